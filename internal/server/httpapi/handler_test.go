package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libriahq/libria/internal/common"
	"github.com/libriahq/libria/internal/logging"
	"github.com/libriahq/libria/internal/server/auth"
	"github.com/libriahq/libria/internal/server/models"
	"github.com/libriahq/libria/internal/server/services"
	"github.com/libriahq/libria/internal/server/storage"
)

var (
	storageUploadCredential = storage.UploadCredential{
		URL:       "https://upload.example/",
		Key:       "uploads/2024/12/user-42/abc.jpg",
		ExpiresIn: 3600,
		Fields:    map[string]string{"Content-Type": "image/jpeg"},
	}
	storageDownloadCredential  = storage.DownloadCredential{URL: "https://download.example/key", ExpiresIn: 3600}
	storageThumbnailCredential = storage.DownloadCredential{URL: "https://download.example/thumb", ExpiresIn: 3600}
)

type fakeLibrary struct {
	uploadGrant   *services.UploadGrant
	uploadErr     error
	downloadGrant *services.DownloadGrant
	downloadErr   error
	createdItem   *models.Item
	createErr     error
	listed        []*models.Item
	listErr       error
	deleteErr     error

	lastCaller auth.Identity
	lastItemID string
}

func (f *fakeLibrary) RequestUploadCredential(ctx context.Context, caller auth.Identity, req services.UploadRequest) (*services.UploadGrant, error) {
	f.lastCaller = caller
	return f.uploadGrant, f.uploadErr
}

func (f *fakeLibrary) RequestDownloadCredential(ctx context.Context, caller auth.Identity, itemID string) (*services.DownloadGrant, error) {
	f.lastCaller = caller
	f.lastItemID = itemID
	return f.downloadGrant, f.downloadErr
}

func (f *fakeLibrary) CreateItem(ctx context.Context, caller auth.Identity, p services.CreateItemParams) (*models.Item, error) {
	f.lastCaller = caller
	return f.createdItem, f.createErr
}

func (f *fakeLibrary) ListItems(ctx context.Context, caller auth.Identity) ([]*models.Item, error) {
	f.lastCaller = caller
	return f.listed, f.listErr
}

func (f *fakeLibrary) DeleteItem(ctx context.Context, caller auth.Identity, itemID string) error {
	f.lastCaller = caller
	f.lastItemID = itemID
	return f.deleteErr
}

func newTestHandler(lib *fakeLibrary) http.Handler {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewHandler(HandlerConfig{
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"*"},
	}, lib, logger)
	return h.Router()
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, router http.Handler, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := doJSON(t, newTestHandler(&fakeLibrary{}), http.MethodGet, "/api/v1/ping", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPresignUpload(t *testing.T) {
	lib := &fakeLibrary{
		uploadGrant: &services.UploadGrant{
			Credential: &storageUploadCredential,
			FileInfo:   nil,
		},
	}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/uploads/presign", bearerFor(t, "user-42"), map[string]any{
		"filename":     "photo.jpg",
		"content_type": "image/jpeg",
		"size":         1024,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Upload uploadCredentialResponse `json:"upload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://upload.example/", resp.Upload.URL)
	assert.Equal(t, int64(3600), resp.Upload.ExpiresIn)

	id, ok := lib.lastCaller.UserID()
	require.True(t, ok)
	assert.Equal(t, "user-42", id)
}

func TestPresignUploadAnonymousPassedThrough(t *testing.T) {
	lib := &fakeLibrary{uploadErr: common.ErrorUnauthenticated}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/uploads/presign", "", map[string]any{
		"filename":     "photo.jpg",
		"content_type": "image/jpeg",
		"size":         1024,
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, lib.lastCaller.IsAnonymous())
}

func TestPresignUploadMalformedBody(t *testing.T) {
	router := newTestHandler(&fakeLibrary{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", common.ErrorInvalidRequest, http.StatusBadRequest},
		{"unauthenticated", common.ErrorUnauthenticated, http.StatusUnauthorized},
		{"forbidden", common.ErrorForbidden, http.StatusForbidden},
		{"not found", common.ErrorNotFound, http.StatusNotFound},
		{"provider", common.ErrorProvider, http.StatusBadGateway},
		{"internal", common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &fakeLibrary{downloadErr: tt.err}
			router := newTestHandler(lib)

			rec := doJSON(t, router, http.MethodGet, "/api/v1/items/item-1/download", bearerFor(t, "user-42"), nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestProviderErrorBodyIsGeneric(t *testing.T) {
	lib := &fakeLibrary{downloadErr: common.ErrorProvider}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/items/item-1/download", bearerFor(t, "user-42"), nil)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "storage provider unavailable", resp.Message)
}

func TestDownloadItem(t *testing.T) {
	lib := &fakeLibrary{
		downloadGrant: &services.DownloadGrant{
			Credential: &storageDownloadCredential,
			Thumbnail:  &storageThumbnailCredential,
			Filename:   "photo.jpg",
			FileSize:   1024,
		},
	}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/items/item-1/download", bearerFor(t, "user-42"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item-1", lib.lastItemID)

	var resp downloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://download.example/key", resp.Download.URL)
	require.NotNil(t, resp.Thumbnail)
	assert.Equal(t, "https://download.example/thumb", resp.Thumbnail.URL)
	assert.Equal(t, "photo.jpg", resp.Filename)
}

func TestDownloadItemNoThumbnailOmitted(t *testing.T) {
	lib := &fakeLibrary{
		downloadGrant: &services.DownloadGrant{
			Credential: &storageDownloadCredential,
			Filename:   "notes.txt",
		},
	}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/items/item-1/download", bearerFor(t, "user-42"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "thumbnail")
}

func TestCreateItem(t *testing.T) {
	lib := &fakeLibrary{
		createdItem: &models.Item{
			ID:         "item-1",
			OwnerID:    "user-42",
			Name:       "holiday photo",
			Type:       models.ItemTypeImage,
			Visibility: models.VisibilityPrivate,
			StorageKey: "uploads/2024/12/user-42/abc.jpg",
		},
	}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/items/", bearerFor(t, "user-42"), map[string]any{
		"name":         "holiday photo",
		"content_type": "image/jpeg",
		"storage_key":  "uploads/2024/12/user-42/abc.jpg",
		"file_size":    1024,
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp itemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "item-1", resp.ID)
	assert.Equal(t, "image", resp.Type)
}

func TestListItems(t *testing.T) {
	lib := &fakeLibrary{
		listed: []*models.Item{
			{ID: "item-1", Type: models.ItemTypeImage},
			{ID: "item-2", Type: models.ItemTypeDocument},
		},
	}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/items/", bearerFor(t, "user-42"), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []itemResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "item-1", resp.Items[0].ID)
}

func TestListItemsEmpty(t *testing.T) {
	router := newTestHandler(&fakeLibrary{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/items/", bearerFor(t, "user-42"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestDeleteItem(t *testing.T) {
	lib := &fakeLibrary{}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/items/item-1", bearerFor(t, "user-42"), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "item-1", lib.lastItemID)
}

func TestDeleteItemForbidden(t *testing.T) {
	lib := &fakeLibrary{deleteErr: common.ErrorForbidden}
	router := newTestHandler(lib)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/items/item-1", bearerFor(t, "user-7"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
