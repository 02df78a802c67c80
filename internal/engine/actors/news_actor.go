package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"groove-press/internal/database"
	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for NewsActor
type (
	CreateNewsMsg struct {
		AuthorID  uuid.UUID `json:"authorId"`
		Title     string    `json:"title"`
		Text      string    `json:"text"`
		ImageURLs []string  `json:"imageUrls"`
	}

	UpdateNewsMsg struct {
		NewsID    uuid.UUID `json:"newsId"`
		AuthorID  uuid.UUID `json:"authorId"`
		Title     string    `json:"title"`
		Text      string    `json:"text"`
		ImageURLs []string  `json:"imageUrls"`
	}

	DeleteNewsMsg struct {
		NewsID   uuid.UUID `json:"newsId"`
		CallerID uuid.UUID `json:"callerId"`
	}

	GetNewsMsg struct {
		NewsID uuid.UUID `json:"newsId"`
	}

	ListNewsMsg struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
)

// NewsListPage is the paginated news response.
type NewsListPage struct {
	Items []*models.News `json:"items"`
	Total int            `json:"total"`
}

// NewsActor owns admin announcements. Admin authorization happens in the
// HTTP layer; the actor handles persistence and the cascade delete of
// images on the upload service.
type NewsActor struct {
	db     database.Store
	images ImageRemover
}

func NewNewsActor(db database.Store, images ImageRemover) actor.Actor {
	return &NewsActor{
		db:     db,
		images: images,
	}
}

func (a *NewsActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("NewsActor started with PID: %v", context.Self())

	case *CreateNewsMsg:
		a.handleCreateNews(context, msg)

	case *UpdateNewsMsg:
		a.handleUpdateNews(context, msg)

	case *DeleteNewsMsg:
		a.handleDeleteNews(context, msg)

	case *GetNewsMsg:
		a.handleGetNews(context, msg)

	case *ListNewsMsg:
		a.handleListNews(context, msg)

	default:
		log.Printf("NewsActor: Unknown message type %T", msg)
	}
}

func (a *NewsActor) removeImages(ctx stdctx.Context, urls []string) {
	if a.images == nil {
		return
	}
	for _, url := range urls {
		if err := a.images.RemoveImage(ctx, url); err != nil {
			log.Printf("Warning: failed to remove news image %s: %v", url, err)
		}
	}
}

func (a *NewsActor) handleCreateNews(context actor.Context, msg *CreateNewsMsg) {
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Title) == "" || strings.TrimSpace(msg.Text) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Title and text are required", nil))
		return
	}

	news := &models.News{
		ID:        uuid.New(),
		Title:     msg.Title,
		Text:      msg.Text,
		ImageURLs: msg.ImageURLs,
		AuthorID:  msg.AuthorID,
		CreatedAt: time.Now(),
	}
	if news.ImageURLs == nil {
		news.ImageURLs = make([]string, 0)
	}

	if err := a.db.SaveNews(ctx, news); err != nil {
		log.Printf("Failed to save news: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save news", err))
		return
	}

	log.Printf("Created news %s (%q)", news.ID, news.Title)
	context.Respond(news)
}

func (a *NewsActor) handleUpdateNews(context actor.Context, msg *UpdateNewsMsg) {
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Title) == "" || strings.TrimSpace(msg.Text) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Title and text are required", nil))
		return
	}

	news, err := a.db.GetNews(ctx, msg.NewsID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load news"))
		return
	}

	// Images dropped from the list are removed from the upload service.
	kept := make(map[string]bool, len(msg.ImageURLs))
	for _, url := range msg.ImageURLs {
		kept[url] = true
	}
	removed := make([]string, 0)
	for _, url := range news.ImageURLs {
		if !kept[url] {
			removed = append(removed, url)
		}
	}

	now := time.Now()
	news.Title = msg.Title
	news.Text = msg.Text
	news.ImageURLs = msg.ImageURLs
	if news.ImageURLs == nil {
		news.ImageURLs = make([]string, 0)
	}
	news.UpdatedAt = &now

	if err := a.db.SaveNews(ctx, news); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save news", err))
		return
	}

	a.removeImages(ctx, removed)
	context.Respond(news)
}

func (a *NewsActor) handleDeleteNews(context actor.Context, msg *DeleteNewsMsg) {
	ctx := stdctx.Background()

	news, err := a.db.GetNews(ctx, msg.NewsID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load news"))
		return
	}

	if err := a.db.DeleteNews(ctx, msg.NewsID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to delete news", err))
		return
	}

	// Cascade: the document goes first, then its images. A failed image
	// delete only logs; the news item is already gone.
	a.removeImages(ctx, news.ImageURLs)

	log.Printf("Deleted news %s (by %s)", msg.NewsID, msg.CallerID)
	context.Respond(&models.StatusResponse{Success: true, Message: "News deleted"})
}

func (a *NewsActor) handleGetNews(context actor.Context, msg *GetNewsMsg) {
	ctx := stdctx.Background()

	news, err := a.db.GetNews(ctx, msg.NewsID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load news"))
		return
	}
	context.Respond(news)
}

func (a *NewsActor) handleListNews(context actor.Context, msg *ListNewsMsg) {
	ctx := stdctx.Background()

	limit := msg.Limit
	if limit <= 0 {
		limit = 10
	}

	items, total, err := a.db.ListNews(ctx, limit, msg.Offset)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load news", err))
		return
	}
	context.Respond(&NewsListPage{Items: items, Total: total})
}
