// Package uploader implements the auxiliary HTTP service for image
// uploads and the music metadata API proxy. It is stateless: every
// request works against the local images directory or the upstream API,
// and concurrent uploads never collide because each file gets a
// generated name.
package uploader

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"groove-press/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxUploadSize limits every upload endpoint to 10 MB per file.
const maxUploadSize = 10 << 20

// maxNewsImages bounds how many files one news upload may carry; the
// request body cap for that endpoint is sized from it.
const maxNewsImages = 10

// Upload categories map to subdirectories of the images dir.
const (
	dirAvatars = "avatars"
	dirNews    = "news"
	dirCovers  = "covers"
)

// imageExts is the allowlist for avatar and news uploads. Cover uploads
// accept a broader set since album art comes in older formats too.
var (
	imageExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	}
	coverExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
		".gif": true, ".bmp": true,
	}
)

// allowedMIMEs are the sniffed content types accepted for any image
// upload. Extension and sniffed type are both checked.
var allowedMIMEs = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/webp": true,
	"image/gif": true, "image/bmp": true,
}

// Service is the upload/proxy HTTP service.
type Service struct {
	imagesDir     string
	proxyHost     string
	client        *http.Client
	newsBodyLimit int64
}

func NewService(imagesDir, proxyHost string) *Service {
	return &Service{
		imagesDir:     imagesDir,
		proxyHost:     proxyHost,
		client:        &http.Client{Timeout: 15 * time.Second},
		newsBodyLimit: maxNewsImages * maxUploadSize,
	}
}

// Router builds the service's route table.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/upload-avatar", s.handleUploadAvatar).Methods(http.MethodPost)
	r.HandleFunc("/upload-news", s.handleUploadNews).Methods(http.MethodPost)
	r.HandleFunc("/upload-cover", s.handleUploadCover).Methods(http.MethodPost)

	r.HandleFunc("/delete-avatar", s.handleDeleteAvatar).Methods(http.MethodDelete)
	r.HandleFunc("/delete-news", s.handleDeleteNews).Methods(http.MethodDelete)
	r.HandleFunc("/delete-cover", s.handleDeleteCover).Methods(http.MethodDelete)

	r.HandleFunc("/proxy", s.handleProxy).Methods(http.MethodGet)

	r.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(s.imagesDir))))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// saveUpload validates and stores one multipart file, returning its
// public URL under /images/.
func (s *Service) saveUpload(r *http.Request, field, subdir string, exts map[string]bool) (string, *utils.AppError) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", utils.NewAppError(utils.ErrInvalidInput, "Invalid multipart form", err)
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return "", utils.NewAppError(utils.ErrInvalidInput, fmt.Sprintf("Missing file field %q", field), nil)
	}
	return s.saveFileHeader(headers[0], subdir, exts)
}

func (s *Service) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	avatarURL, appErr := s.saveUpload(r, "avatar", dirAvatars, imageExts)
	if appErr != nil {
		writeError(w, utils.AppErrorToHTTPStatus(appErr.Code), appErr.Message)
		return
	}

	log.Printf("Stored avatar %s (user %q)", avatarURL, r.FormValue("username"))
	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": avatarURL})
}

func (s *Service) handleUploadNews(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.newsBodyLimit)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No image files provided")
		return
	}
	if len(files) > maxNewsImages {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d images per upload", maxNewsImages))
		return
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		imageURL, appErr := s.saveFileHeader(header, dirNews, imageExts)
		if appErr != nil {
			writeError(w, utils.AppErrorToHTTPStatus(appErr.Code), appErr.Message)
			return
		}
		urls = append(urls, imageURL)
	}

	log.Printf("Stored %d news images", len(urls))
	writeJSON(w, http.StatusOK, map[string][]string{"imageUrls": urls})
}

func (s *Service) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	coverURL, appErr := s.saveUpload(r, "cover", dirCovers, coverExts)
	if appErr != nil {
		writeError(w, utils.AppErrorToHTTPStatus(appErr.Code), appErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"coverUrl": coverURL})
}

// saveFileHeader validates one uploaded file against the size, extension
// and sniffed MIME-type rules, then writes it under a generated name.
func (s *Service) saveFileHeader(header *multipart.FileHeader, subdir string, exts map[string]bool) (string, *utils.AppError) {
	if header.Size > maxUploadSize {
		return "", utils.NewAppError(utils.ErrFileTooLarge, "File exceeds the 10 MB limit", nil)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !exts[ext] {
		return "", utils.NewAppError(utils.ErrFileType, fmt.Sprintf("File extension %q not allowed", ext), nil)
	}

	file, err := header.Open()
	if err != nil {
		return "", utils.NewAppError(utils.ErrInvalidInput, "Failed to open file", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", utils.NewAppError(utils.ErrInvalidInput, "Failed to read file", err)
	}
	if !allowedMIMEs[http.DetectContentType(head[:n])] {
		return "", utils.NewAppError(utils.ErrFileType, "File content is not a supported image", nil)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", utils.NewAppError(utils.ErrInvalidInput, "Failed to rewind file", err)
	}

	dir := filepath.Join(s.imagesDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", utils.NewAppError(utils.ErrDatabase, "Failed to create upload directory", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", utils.NewAppError(utils.ErrDatabase, "Failed to create file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", utils.NewAppError(utils.ErrDatabase, "Failed to write file", err)
	}

	return "/images/" + subdir + "/" + name, nil
}

// localPath maps a public /images/ URL back to a file path, confined to
// the expected subdirectory.
func (s *Service) localPath(imageURL, subdir string) (string, bool) {
	prefix := "/images/" + subdir + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	name := filepath.Base(strings.TrimPrefix(imageURL, prefix))
	if name == "." || name == ".." || name == "/" {
		return "", false
	}
	return filepath.Join(s.imagesDir, subdir, name), true
}

func (s *Service) deleteFile(w http.ResponseWriter, imageURL, subdir string) {
	path, ok := s.localPath(imageURL, subdir)
	if !ok {
		writeError(w, http.StatusBadRequest, "URL is not a managed image")
		return
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	log.Printf("Deleted image %s", imageURL)
	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}

func (s *Service) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.deleteFile(w, req.AvatarURL, dirAvatars)
}

func (s *Service) handleDeleteNews(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageURLs []string `json:"imageUrls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.ImageURLs) == 0 {
		writeError(w, http.StatusBadRequest, "No image URLs provided")
		return
	}

	deleted := 0
	for _, imageURL := range req.ImageURLs {
		path, ok := s.localPath(imageURL, dirNews)
		if !ok {
			continue
		}
		if err := os.Remove(path); err == nil {
			deleted++
		}
	}
	if deleted == 0 {
		writeError(w, http.StatusNotFound, "No files found")
		return
	}

	log.Printf("Deleted %d news images", deleted)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d file(s) deleted", deleted),
	})
}

func (s *Service) handleDeleteCover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CoverURL string `json:"coverUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.deleteFile(w, req.CoverURL, dirCovers)
}

// handleProxy forwards GET requests to the music metadata API. Only the
// configured host is allowed; the upstream body is returned verbatim.
func (s *Service) handleProxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "Missing url parameter")
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme != "https" || target.Host != s.proxyHost {
		writeError(w, http.StatusBadRequest, "URL target not allowed")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build upstream request")
		return
	}
	// The metadata API rejects requests without browser-like headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Proxy request to %s failed: %v", target.Host, err)
		writeError(w, http.StatusInternalServerError, "Upstream request failed")
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("Failed to stream proxy response: %v", err)
	}
}
