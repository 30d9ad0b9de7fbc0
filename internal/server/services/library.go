// Package services contains the application services invoked by the HTTP
// layer.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/libriahq/libria/internal/common"
	"github.com/libriahq/libria/internal/logging"
	"github.com/libriahq/libria/internal/server/auth"
	"github.com/libriahq/libria/internal/server/models"
	"github.com/libriahq/libria/internal/server/repositories/items"
	"github.com/libriahq/libria/internal/server/storage"
)

// CredentialIssuer is the slice of the storage service the library service
// depends on.
type CredentialIssuer interface {
	IssueUploadCredential(ctx context.Context, filename, contentType, ownerID string, expires time.Duration) (*storage.UploadCredential, error)
	IssueDownloadCredential(ctx context.Context, storageKey string, expires time.Duration) (*storage.DownloadCredential, error)
	DeleteObject(ctx context.Context, storageKey string) bool
}

// Options carries the upload/download policy knobs.
type Options struct {
	// AllowAnonymousUploads lets unauthenticated callers obtain upload
	// credentials under AnonymousUploadID. Development convenience, off by
	// default.
	AllowAnonymousUploads bool
	AnonymousUploadID     string

	UploadExpiry   time.Duration
	DownloadExpiry time.Duration
}

// UploadRequest is the caller-declared file metadata. Never persisted.
type UploadRequest struct {
	Filename     string
	ContentType  string
	DeclaredSize int64
}

// UploadGrant is the response to a successful upload credential request.
type UploadGrant struct {
	Credential *storage.UploadCredential
	FileInfo   *storage.FileInfo
}

// DownloadGrant is the response to a successful download credential request.
// Thumbnail is nil when the item has no thumbnail key; that is not an error.
type DownloadGrant struct {
	Credential *storage.DownloadCredential
	Thumbnail  *storage.DownloadCredential
	Filename   string
	FileSize   int64
}

// CreateItemParams describes an uploaded object to register in the library.
type CreateItemParams struct {
	Name             string
	ContentType      string
	StorageKey       string
	OriginalFilename string
	FileSize         int64
	Visibility       models.Visibility
	PreviewText      string
}

// LibraryService orchestrates upload/download credential requests and item
// lifecycle around the item directory and the credential issuer.
type LibraryService struct {
	items  items.Repository
	issuer CredentialIssuer
	opts   Options
	logger logging.Logger
}

func NewLibraryService(repo items.Repository, issuer CredentialIssuer, opts Options, logger logging.Logger) *LibraryService {
	if opts.UploadExpiry <= 0 {
		opts.UploadExpiry = storage.DefaultCredentialExpiry
	}
	if opts.DownloadExpiry <= 0 {
		opts.DownloadExpiry = storage.DefaultCredentialExpiry
	}
	return &LibraryService{
		items:  repo,
		issuer: issuer,
		opts:   opts,
		logger: logger.With("module", "library"),
	}
}

// RequestUploadCredential validates the declared metadata, resolves the
// uploader identity and asks the issuer for a scoped upload grant. Validation
// and policy failures never reach the provider.
func (s *LibraryService) RequestUploadCredential(ctx context.Context, caller auth.Identity, req UploadRequest) (*UploadGrant, error) {
	info, err := storage.ValidateUpload(req.Filename, req.ContentType, req.DeclaredSize)
	if err != nil {
		return nil, err
	}

	ownerID, ok := caller.UserID()
	if !ok {
		if !s.opts.AllowAnonymousUploads {
			return nil, fmt.Errorf("%w: sign in to upload files", common.ErrorUnauthenticated)
		}
		ownerID = s.opts.AnonymousUploadID
	}

	cred, err := s.issuer.IssueUploadCredential(ctx, req.Filename, req.ContentType, ownerID, s.opts.UploadExpiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "upload credential granted", "filename", req.Filename, "owner", ownerID)

	return &UploadGrant{Credential: cred, FileInfo: info}, nil
}

// RequestDownloadCredential resolves the item, authorizes the caller and
// returns a read-scoped credential, plus an independent one for the thumbnail
// when the record carries a thumbnail key.
func (s *LibraryService) RequestDownloadCredential(ctx context.Context, caller auth.Identity, itemID string) (*DownloadGrant, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := storage.AuthorizeDownload(caller, item); err != nil {
		return nil, err
	}

	cred, err := s.issuer.IssueDownloadCredential(ctx, item.StorageKey, s.opts.DownloadExpiry)
	if err != nil {
		return nil, err
	}

	grant := &DownloadGrant{
		Credential: cred,
		Filename:   item.OriginalFilename,
		FileSize:   item.FileSize,
	}

	if item.ThumbnailKey != "" {
		thumb, err := s.issuer.IssueDownloadCredential(ctx, item.ThumbnailKey, s.opts.DownloadExpiry)
		if err != nil {
			return nil, err
		}
		grant.Thumbnail = thumb
	}

	s.logger.Info(ctx, "download credential granted", "item", item.ID)

	return grant, nil
}

// CreateItem registers an uploaded object as a library item owned by the
// caller. Image and video items get their thumbnail key populated up front;
// rendering the thumbnail itself happens elsewhere.
func (s *LibraryService) CreateItem(ctx context.Context, caller auth.Identity, p CreateItemParams) (*models.Item, error) {
	ownerID, ok := caller.UserID()
	if !ok {
		return nil, fmt.Errorf("%w: sign in to create items", common.ErrorUnauthenticated)
	}

	if p.Name == "" || p.StorageKey == "" || p.ContentType == "" {
		return nil, fmt.Errorf("%w: name, storage key and content type are required", common.ErrorInvalidRequest)
	}

	visibility := p.Visibility
	switch visibility {
	case models.VisibilityPublic, models.VisibilityPrivate:
	case "":
		visibility = models.VisibilityPrivate
	default:
		return nil, fmt.Errorf("%w: unknown visibility %q", common.ErrorInvalidRequest, p.Visibility)
	}

	item := &models.Item{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Name:             p.Name,
		Type:             storage.ItemTypeFor(p.ContentType),
		MimeType:         p.ContentType,
		Visibility:       visibility,
		StorageKey:       p.StorageKey,
		FileSize:         p.FileSize,
		PreviewText:      p.PreviewText,
		OriginalFilename: p.OriginalFilename,
	}

	if storage.NeedsThumbnail(p.ContentType) {
		item.ThumbnailKey = storage.DeriveThumbnailKey(p.StorageKey)
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("error creating item: %w", err)
	}

	s.logger.Info(ctx, "item created", "item", item.ID, "type", string(item.Type))

	return item, nil
}

// ListItems returns the caller's active items.
func (s *LibraryService) ListItems(ctx context.Context, caller auth.Identity) ([]*models.Item, error) {
	ownerID, ok := caller.UserID()
	if !ok {
		return nil, fmt.Errorf("%w: sign in to list items", common.ErrorUnauthenticated)
	}
	return s.items.ListByOwner(ctx, ownerID)
}

// DeleteItem soft-deletes an item the caller owns and best-effort removes its
// objects from storage. Storage failures do not roll the deletion back.
func (s *LibraryService) DeleteItem(ctx context.Context, caller auth.Identity, itemID string) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.IsDeleted() {
		return common.ErrorNotFound
	}

	ownerID, ok := caller.UserID()
	if !ok {
		return fmt.Errorf("%w: sign in to delete items", common.ErrorUnauthenticated)
	}
	if ownerID != item.OwnerID {
		return common.ErrorForbidden
	}

	if err := s.items.SoftDelete(ctx, itemID); err != nil {
		return err
	}

	if !s.issuer.DeleteObject(ctx, item.StorageKey) {
		s.logger.Warn(ctx, "object left behind after item deletion", "key", item.StorageKey)
	}
	if item.ThumbnailKey != "" && !s.issuer.DeleteObject(ctx, item.ThumbnailKey) {
		s.logger.Warn(ctx, "thumbnail left behind after item deletion", "key", item.ThumbnailKey)
	}

	s.logger.Info(ctx, "item deleted", "item", item.ID)

	return nil
}
