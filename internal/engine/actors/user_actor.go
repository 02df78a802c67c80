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
	"golang.org/x/crypto/bcrypt"
)

// ImageRemover deletes a previously uploaded image by its public URL.
// The upload service client implements it; a nil remover skips cleanup.
type ImageRemover interface {
	RemoveImage(ctx stdctx.Context, imageURL string) error
}

// Message types for UserActor
type (
	RegisterUserMsg struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginMsg struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	UpdateProfileMsg struct {
		UserID       uuid.UUID `json:"userId"`
		NewUsername  string    `json:"newUsername,omitempty"`
		NewAvatarURL *string   `json:"newAvatarUrl,omitempty"`
	}

	BanUserMsg struct {
		AdminID  uuid.UUID `json:"adminId"`
		TargetID uuid.UUID `json:"targetId"`
		Banned   bool      `json:"banned"`
	}

	SetRoleMsg struct {
		AdminID  uuid.UUID   `json:"adminId"`
		TargetID uuid.UUID   `json:"targetId"`
		Role     models.Role `json:"role"`
	}

	DeleteAccountMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	SetEmailVerifiedMsg struct {
		UserID   uuid.UUID `json:"userId"`
		Verified bool      `json:"verified"`
	}
)

// UserActor handles registration, credential checks and profile
// mutations. Token issuance stays in the HTTP layer; the actor only
// verifies credentials and returns the account.
type UserActor struct {
	db      database.Store
	images  ImageRemover
	metrics *utils.MetricsCollector
}

func NewUserActor(db database.Store, images ImageRemover, metrics *utils.MetricsCollector) actor.Actor {
	return &UserActor{
		db:      db,
		images:  images,
		metrics: metrics,
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("UserActor started with PID: %v", context.Self())

	case *RegisterUserMsg:
		a.handleRegister(context, msg)

	case *LoginMsg:
		a.handleLogin(context, msg)

	case *GetUserProfileMsg:
		a.handleGetProfile(context, msg)

	case *UpdateProfileMsg:
		a.handleUpdateProfile(context, msg)

	case *BanUserMsg:
		a.handleBanUser(context, msg)

	case *SetRoleMsg:
		a.handleSetRole(context, msg)

	case *DeleteAccountMsg:
		a.handleDeleteAccount(context, msg)

	case *SetEmailVerifiedMsg:
		a.handleSetEmailVerified(context, msg)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.db.CountUsers(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count users", err))
			return
		}
		context.Respond(count)

	default:
		log.Printf("UserActor: Unknown message type %T", msg)
	}
}

func (a *UserActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	username := strings.TrimSpace(msg.Username)
	email := strings.TrimSpace(msg.Email)
	if username == "" || email == "" || msg.Password == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Username, email and password are required", nil))
		return
	}

	if existing, _ := a.db.GetUserByEmail(ctx, email); existing != nil {
		log.Printf("Registration rejected, email already in use: %s", email)
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
		return
	}
	if existing, _ := a.db.GetUserByUsername(ctx, username); existing != nil {
		log.Printf("Registration rejected, username taken: %s", username)
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Username already taken", nil))
		return
	}

	hashedPassword, err := hashPassword(msg.Password)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
		return
	}

	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           models.RoleUser,
		CreatedAt:      time.Now(),
	}

	if err := a.db.SaveUser(ctx, user); err != nil {
		log.Printf("Failed to save user: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
		return
	}

	a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	log.Printf("Registered user %s (%s)", user.ID, user.Username)
	context.Respond(user)
}

func (a *UserActor) handleLogin(context actor.Context, msg *LoginMsg) {
	ctx := stdctx.Background()

	user, err := a.db.GetUserByEmail(ctx, msg.Email)
	if err != nil {
		log.Printf("Login failed, no account for %s", msg.Email)
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Invalid credentials", nil))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		log.Printf("Login failed, bad password for %s", msg.Email)
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Invalid credentials", nil))
		return
	}

	// Banned accounts may still log in; bans only block content creation.
	log.Printf("Login successful for user: %s", user.Username)
	context.Respond(user)
}

func (a *UserActor) handleGetProfile(context actor.Context, msg *GetUserProfileMsg) {
	ctx := stdctx.Background()

	user, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}
	context.Respond(user)
}

func (a *UserActor) handleUpdateProfile(context actor.Context, msg *UpdateProfileMsg) {
	ctx := stdctx.Background()

	user, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}
	if user.IsBanned {
		context.Respond(utils.NewBannedError())
		return
	}

	if msg.NewUsername != "" && msg.NewUsername != user.Username {
		if existing, _ := a.db.GetUserByUsername(ctx, msg.NewUsername); existing != nil {
			context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Username already taken", nil))
			return
		}
		user.Username = msg.NewUsername
	}

	if msg.NewAvatarURL != nil {
		oldAvatar := user.AvatarURL
		user.AvatarURL = *msg.NewAvatarURL
		if oldAvatar != "" && oldAvatar != user.AvatarURL && a.images != nil {
			if err := a.images.RemoveImage(ctx, oldAvatar); err != nil {
				log.Printf("Warning: failed to remove old avatar %s: %v", oldAvatar, err)
			}
		}
	}

	if err := a.db.SaveUser(ctx, user); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
		return
	}
	context.Respond(user)
}

func (a *UserActor) handleBanUser(context actor.Context, msg *BanUserMsg) {
	ctx := stdctx.Background()

	target, err := a.db.GetUser(ctx, msg.TargetID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.TargetID.String()))
		return
	}
	if target.IsAdmin() {
		context.Respond(utils.NewForbiddenError("ban an admin account"))
		return
	}

	if err := a.db.SetUserBan(ctx, msg.TargetID, msg.Banned); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update ban state", err))
		return
	}

	target.IsBanned = msg.Banned
	log.Printf("Admin %s set ban=%v on user %s", msg.AdminID, msg.Banned, msg.TargetID)
	context.Respond(target)
}

func (a *UserActor) handleSetRole(context actor.Context, msg *SetRoleMsg) {
	ctx := stdctx.Background()

	if msg.Role != models.RoleUser && msg.Role != models.RoleAdmin {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Unknown role", nil))
		return
	}

	target, err := a.db.GetUser(ctx, msg.TargetID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.TargetID.String()))
		return
	}

	if err := a.db.SetUserRole(ctx, msg.TargetID, msg.Role); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update role", err))
		return
	}

	target.Role = msg.Role
	log.Printf("Admin %s set role=%s on user %s", msg.AdminID, msg.Role, msg.TargetID)
	context.Respond(target)
}

// handleSetEmailVerified mirrors the auth provider's verification state
// onto the user document.
func (a *UserActor) handleSetEmailVerified(context actor.Context, msg *SetEmailVerifiedMsg) {
	ctx := stdctx.Background()

	user, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	user.EmailVerified = msg.Verified
	if err := a.db.SaveUser(ctx, user); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
		return
	}
	context.Respond(user)
}

func (a *UserActor) handleDeleteAccount(context actor.Context, msg *DeleteAccountMsg) {
	ctx := stdctx.Background()

	user, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	if err := a.db.DeleteUser(ctx, msg.UserID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to delete user", err))
		return
	}

	// The account's content stays behind; feeds render it with
	// placeholder authorship once the user document is gone.
	if user.AvatarURL != "" && a.images != nil {
		if err := a.images.RemoveImage(ctx, user.AvatarURL); err != nil {
			log.Printf("Warning: failed to remove avatar for deleted user %s: %v", msg.UserID, err)
		}
	}

	log.Printf("Deleted account %s", msg.UserID)
	context.Respond(&models.StatusResponse{Success: true, Message: "Account deleted"})
}
