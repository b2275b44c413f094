package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"lovediary/internal/config"
	"lovediary/internal/media"
	"lovediary/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockEntryRepository is a mock of the EntryRepository interface
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *models.DiaryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id uint) (*models.DiaryEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiaryEntry), args.Error(1)
}

func (m *MockEntryRepository) List(ctx context.Context, limit, offset int) ([]*models.DiaryEntry, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.DiaryEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockEntryRepository) Update(ctx context.Context, entry *models.DiaryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

const (
	testUsername = "kim"
	testPassword = "correct horse battery staple"
)

// newTestApp wires a server around the mock repository and registers the full
// route table so tests exercise the real paths and middleware.
func newTestApp(t *testing.T, repo *MockEntryRepository) (*Server, *fiber.App) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret: "handler-test-secret",
		Port:      "3000",
		UploadDir: t.TempDir(),
		AuthUsers: testUsername + ":" + string(hash),
		Env:       "test",
	}

	store, err := media.NewStore(cfg.UploadDir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	s, err := NewServerWithDeps(cfg, nil, nil, repo, store)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func jsonRequest(method, path string, body any) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLogin(t *testing.T) {
	_, app := newTestApp(t, new(MockEntryRepository))

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"username": testUsername, "password": testPassword},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong Password",
			body:           map[string]string{"username": testUsername, "password": "nope"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown User",
			body:           map[string]string{"username": "ghost", "password": testPassword},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Fields",
			body:           map[string]string{"username": testUsername},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/login", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body struct {
					Token string `json:"token"`
				}
				decodeBody(t, resp, &body)
				assert.NotEmpty(t, body.Token)
			} else {
				_ = resp.Body.Close()
			}
		})
	}
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/login",
		map[string]string{"username": testUsername, "password": testPassword}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	return body.Token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, app := newTestApp(t, new(MockEntryRepository))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Missing Header", "", http.StatusUnauthorized},
		{"Not Bearer", "Basic abc123", http.StatusUnauthorized},
		{"Garbage Token", "Bearer not-a-jwt", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/diary/1", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// entryForm builds a multipart body with the given fields and one optional
// media file.
func entryForm(t *testing.T, fields map[string]string, filename, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="media"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = io.WriteString(part, "file bytes")
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateEntry(t *testing.T) {
	repo := new(MockEntryRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, app := newTestApp(t, repo)
	token := login(t, app)

	t.Run("Success With Media", func(t *testing.T) {
		body, contentType := entryForm(t, map[string]string{
			"author":  "kim",
			"title":   "First entry",
			"content": "Hello diary",
			"date":    "2026-08-30",
		}, "pic.png", "image/png")

		req := httptest.NewRequest(http.MethodPost, "/api/diary", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var entry models.DiaryEntry
		decodeBody(t, resp, &entry)
		assert.Equal(t, "First entry", entry.Title)
		assert.Len(t, entry.Media, 1)
	})

	t.Run("Missing Fields", func(t *testing.T) {
		body, contentType := entryForm(t, map[string]string{"author": "kim"}, "", "")

		req := httptest.NewRequest(http.MethodPost, "/api/diary", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Rejected Media Type", func(t *testing.T) {
		body, contentType := entryForm(t, map[string]string{
			"author":  "kim",
			"title":   "Entry",
			"content": "Content",
		}, "malware.exe", "application/octet-stream")

		req := httptest.NewRequest(http.MethodPost, "/api/diary", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetEntries(t *testing.T) {
	repo := new(MockEntryRepository)
	repo.On("List", mock.Anything, 5, 5).Return([]*models.DiaryEntry{
		{ID: 7, Title: "newer"},
		{ID: 6, Title: "older"},
	}, int64(12), nil)
	_, app := newTestApp(t, repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/diary?page=2&limit=5", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Entries    []models.DiaryEntry `json:"entries"`
		Total      int64               `json:"total"`
		Page       int                 `json:"page"`
		TotalPages int64               `json:"totalPages"`
	}
	decodeBody(t, resp, &body)

	assert.Len(t, body.Entries, 2)
	assert.Equal(t, int64(12), body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, int64(3), body.TotalPages)
}

func TestGetEntry(t *testing.T) {
	repo := new(MockEntryRepository)
	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.DiaryEntry{ID: 1, Title: "found"}, nil)
	repo.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("Entry", 99))
	_, app := newTestApp(t, repo)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"Found", "/api/diary/1", http.StatusOK},
		{"Not Found", "/api/diary/99", http.StatusNotFound},
		{"Invalid ID", "/api/diary/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestLikeEntry(t *testing.T) {
	repo := new(MockEntryRepository)
	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.DiaryEntry{ID: 1, Likes: 4}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	_, app := newTestApp(t, repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/diary/1/like", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Likes int `json:"likes"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 5, body.Likes)
}

func TestAddComment(t *testing.T) {
	repo := new(MockEntryRepository)
	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.DiaryEntry{ID: 1}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	_, app := newTestApp(t, repo)

	t.Run("Success", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/diary/1/comment",
			map[string]string{"author": "lee", "content": "lovely"}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var comment models.Comment
		decodeBody(t, resp, &comment)
		assert.NotEmpty(t, comment.ID)
		assert.Equal(t, "lee", comment.Author)
	})

	t.Run("Blank Content", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/diary/1/comment",
			map[string]string{"author": "lee", "content": "   "}))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteEntry(t *testing.T) {
	repo := new(MockEntryRepository)
	repo.On("GetByID", mock.Anything, uint(3)).Return(&models.DiaryEntry{ID: 3}, nil)
	repo.On("Delete", mock.Anything, uint(3)).Return(nil)
	_, app := newTestApp(t, repo)
	token := login(t, app)

	req := httptest.NewRequest(http.MethodDelete, "/api/diary/3", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Entry deleted", body.Message)
	repo.AssertCalled(t, "Delete", mock.Anything, uint(3))
}
