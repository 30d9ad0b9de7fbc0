// Package httpapi exposes the library over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/libriahq/libria/internal/common"
	"github.com/libriahq/libria/internal/logging"
	"github.com/libriahq/libria/internal/server/auth"
	"github.com/libriahq/libria/internal/server/models"
	"github.com/libriahq/libria/internal/server/services"
)

// LibraryService is the slice of the library service the handlers depend on.
type LibraryService interface {
	RequestUploadCredential(ctx context.Context, caller auth.Identity, req services.UploadRequest) (*services.UploadGrant, error)
	RequestDownloadCredential(ctx context.Context, caller auth.Identity, itemID string) (*services.DownloadGrant, error)
	CreateItem(ctx context.Context, caller auth.Identity, p services.CreateItemParams) (*models.Item, error)
	ListItems(ctx context.Context, caller auth.Identity) ([]*models.Item, error)
	DeleteItem(ctx context.Context, caller auth.Identity, itemID string) error
}

// HandlerConfig carries the handler-level settings.
type HandlerConfig struct {
	JWTSecret      string
	AllowedOrigins []string
}

type Handler struct {
	config  HandlerConfig
	library LibraryService
	logger  logging.Logger
}

func NewHandler(config HandlerConfig, library LibraryService, logger logging.Logger) *Handler {
	return &Handler{
		config:  config,
		library: library,
		logger:  logger.With("module", "httpapi"),
	}
}

// Router returns the API routes under /api/v1.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(AuthMiddleware(h.config.JWTSecret))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.handlePing)
		r.Post("/uploads/presign", h.handlePresignUpload)
		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.handleListItems)
			r.Post("/", h.handleCreateItem)
			r.Get("/{itemID}/download", h.handleDownloadItem)
			r.Delete("/{itemID}", h.handleDeleteItem)
		})
	})

	return r
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type presignUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type uploadCredentialResponse struct {
	URL       string            `json:"url"`
	Key       string            `json:"key"`
	Fields    map[string]string `json:"fields"`
	ExpiresIn int64             `json:"expires_in"`
	Mock      bool              `json:"mock"`
}

type presignUploadResponse struct {
	Upload uploadCredentialResponse `json:"upload"`
	File   any                      `json:"file"`
}

func (h *Handler) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	var req presignUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	grant, err := h.library.RequestUploadCredential(r.Context(), IdentityFromContext(r.Context()), services.UploadRequest{
		Filename:     req.Filename,
		ContentType:  req.ContentType,
		DeclaredSize: req.Size,
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, presignUploadResponse{
		Upload: uploadCredentialResponse{
			URL:       grant.Credential.URL,
			Key:       grant.Credential.Key,
			Fields:    grant.Credential.Fields,
			ExpiresIn: grant.Credential.ExpiresIn,
			Mock:      grant.Credential.Mock,
		},
		File: grant.FileInfo,
	})
}

type downloadCredentialResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
	Mock      bool   `json:"mock"`
}

type downloadResponse struct {
	Download  downloadCredentialResponse  `json:"download"`
	Thumbnail *downloadCredentialResponse `json:"thumbnail,omitempty"`
	Filename  string                      `json:"filename"`
	FileSize  int64                       `json:"file_size"`
}

func (h *Handler) handleDownloadItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	grant, err := h.library.RequestDownloadCredential(r.Context(), IdentityFromContext(r.Context()), itemID)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	resp := downloadResponse{
		Download: downloadCredentialResponse{
			URL:       grant.Credential.URL,
			ExpiresIn: grant.Credential.ExpiresIn,
			Mock:      grant.Credential.Mock,
		},
		Filename: grant.Filename,
		FileSize: grant.FileSize,
	}
	if grant.Thumbnail != nil {
		resp.Thumbnail = &downloadCredentialResponse{
			URL:       grant.Thumbnail.URL,
			ExpiresIn: grant.Thumbnail.ExpiresIn,
			Mock:      grant.Thumbnail.Mock,
		}
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}

type createItemRequest struct {
	Name             string `json:"name"`
	ContentType      string `json:"content_type"`
	StorageKey       string `json:"storage_key"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	Visibility       string `json:"visibility"`
	PreviewText      string `json:"preview_text"`
}

type itemResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	MimeType         string    `json:"mime_type"`
	Visibility       string    `json:"visibility"`
	StorageKey       string    `json:"storage_key"`
	ThumbnailKey     string    `json:"thumbnail_key,omitempty"`
	FileSize         int64     `json:"file_size"`
	PreviewText      string    `json:"preview_text,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toItemResponse(item *models.Item) itemResponse {
	return itemResponse{
		ID:               item.ID,
		Name:             item.Name,
		Type:             string(item.Type),
		MimeType:         item.MimeType,
		Visibility:       string(item.Visibility),
		StorageKey:       item.StorageKey,
		ThumbnailKey:     item.ThumbnailKey,
		FileSize:         item.FileSize,
		PreviewText:      item.PreviewText,
		OriginalFilename: item.OriginalFilename,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	item, err := h.library.CreateItem(r.Context(), IdentityFromContext(r.Context()), services.CreateItemParams{
		Name:             req.Name,
		ContentType:      req.ContentType,
		StorageKey:       req.StorageKey,
		OriginalFilename: req.OriginalFilename,
		FileSize:         req.FileSize,
		Visibility:       models.Visibility(req.Visibility),
		PreviewText:      req.PreviewText,
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.library.ListItems(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"items": resp})
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if err := h.library.DeleteItem(r.Context(), IdentityFromContext(r.Context()), itemID); err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrorInvalidRequest)
	}
	return nil
}
