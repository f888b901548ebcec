package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"noet-be/internal/bootstrap"
	"noet-be/internal/config"
	"noet-be/internal/dto"
	"noet-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "logs", "app.log"),
			ChangeLogFilePath:  filepath.Join(dir, "logs", "changes.log"),
			CorsAllowedOrigins: "*",
		},
		Endpoints: config.Endpoints{
			Frontend: config.Endpoint{Host: "localhost", Port: 3000},
			Backend:  config.Endpoint{Host: "localhost", Port: 3001},
		},
		Storage: config.StorageConfig{
			NotesBasePath: filepath.Join(dir, "notes"),
			SettingsFile:  filepath.Join(dir, "storage-settings.json"),
			DeletePolicy:  config.DeletePolicyIgnore,
		},
		Limits: config.LimitsConfig{
			RateLimitMax:    1000,
			RateLimitWindow: 15 * time.Minute,
			BodyLimitBytes:  110 * 1024 * 1024,
			MaxUploadBytes:  100 * 1024 * 1024,
		},
		Infra: config.InfraConfig{
			ChangesTopic:   "NOET_CHANGES",
			ClusterChannel: "noet_cluster_events",
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	container := bootstrap.NewContainer(cfg)
	t.Cleanup(container.Close)
	return New(cfg, container).GetApp()
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestNoteLifecycle(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	status, env := call(t, app, "POST", "/api/alice/notes", map[string]interface{}{"title": "First", "content": "hello"})
	require.Equal(t, http.StatusCreated, status)
	created := decodeData[dto.NoteResponse](t, env)
	assert.Equal(t, 1, created.Version)
	notePath := "/api/alice/notes/" + created.Id

	status, env = call(t, app, "PUT", notePath, map[string]interface{}{"metadata": map[string]interface{}{"starred": true}})
	require.Equal(t, http.StatusOK, status)
	updated := decodeData[dto.NoteResponse](t, env)
	assert.True(t, updated.Starred)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "hello", updated.Content)

	status, env = call(t, app, "GET", "/api/alice/notes?starred=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]dto.NoteMetadataResponse](t, env), 1)

	status, env = call(t, app, "DELETE", notePath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decodeData[dto.NoteResponse](t, env).Deleted)

	_, env = call(t, app, "GET", "/api/alice/notes", nil)
	assert.Empty(t, decodeData[[]dto.NoteMetadataResponse](t, env))
	_, env = call(t, app, "GET", "/api/alice/notes?deleted=true", nil)
	trash := decodeData[[]dto.NoteMetadataResponse](t, env)
	require.Len(t, trash, 1)
	assert.Equal(t, created.Id, trash[0].Id)

	status, env = call(t, app, "POST", notePath+"/restore", nil)
	require.Equal(t, http.StatusOK, status)
	restored := decodeData[dto.NoteResponse](t, env)
	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)

	_, env = call(t, app, "GET", "/api/alice/notes", nil)
	assert.Len(t, decodeData[[]dto.NoteMetadataResponse](t, env), 1)

	status, _ = call(t, app, "DELETE", notePath+"/permanent", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, app, "GET", notePath, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusNotFound, env.Code)

	status, _ = call(t, app, "DELETE", notePath+"/permanent", nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, env = call(t, app, "GET", "/api/alice/notes?deleted=true", nil)
	assert.Empty(t, decodeData[[]dto.NoteMetadataResponse](t, env))
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"bad user id", "GET", "/api/al.ice/notes", nil, http.StatusBadRequest},
		{"bad note id", "GET", "/api/alice/notes/not-a-uuid", nil, http.StatusBadRequest},
		{"bad boolean filter", "GET", "/api/alice/notes?starred=maybe", nil, http.StatusBadRequest},
		{"bad since filter", "GET", "/api/alice/notes?since=yesterday", nil, http.StatusBadRequest},
		{"missing tag name", "POST", "/api/alice/tags", map[string]string{}, http.StatusBadRequest},
		{"bad reorder position", "POST", "/api/alice/folders/reorder", map[string]string{
			"sourceId": "7f2d6c1e-0000-4000-8000-000000000001",
			"targetId": "7f2d6c1e-0000-4000-8000-000000000002",
			"position": "inside",
		}, http.StatusBadRequest},
		{"tags cannot move", "POST", "/api/alice/tags/7f2d6c1e-0000-4000-8000-000000000001/move", map[string]string{}, http.StatusNotFound},
		{"storage path required", "POST", "/api/storage/path", map[string]string{}, http.StatusBadRequest},
		{"unknown route", "GET", "/api/alice/nothing-here", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestCollectionsOverHTTP(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	ids := make([]string, 0, 3)
	for _, name := range []string{"a", "b", "c"} {
		status, env := call(t, app, "POST", "/api/alice/notebooks", map[string]string{"name": name, "color": "#abc"})
		require.Equal(t, http.StatusCreated, status)
		ids = append(ids, decodeData[dto.CollectionResponse](t, env).Id)
	}

	status, env := call(t, app, "POST", "/api/alice/notebooks/reorder", map[string]string{
		"sourceId": ids[2], "targetId": ids[0], "position": "before",
	})
	require.Equal(t, http.StatusOK, status)
	ordered := decodeData[[]dto.CollectionResponse](t, env)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{ordered[0].Name, ordered[1].Name, ordered[2].Name})

	_, _ = call(t, app, "POST", "/api/alice/notes", map[string]interface{}{"notebook": ids[0]})
	_, env = call(t, app, "GET", "/api/alice/notebooks/"+ids[0], nil)
	assert.Equal(t, 1, decodeData[dto.CollectionResponse](t, env).NoteCount)

	status, env = call(t, app, "POST", "/api/alice/notebooks/"+ids[1]+"/move", map[string]string{"parentId": ids[0]})
	require.Equal(t, http.StatusOK, status)
	moved := decodeData[dto.CollectionResponse](t, env)
	require.NotNil(t, moved.ParentId)
	assert.Equal(t, ids[0], *moved.ParentId)

	status, _ = call(t, app, "POST", "/api/alice/notebooks/"+ids[0]+"/move", map[string]string{"parentId": ids[1]})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, "DELETE", "/api/alice/notebooks/"+ids[0], nil)
	require.Equal(t, http.StatusOK, status)
	_, env = call(t, app, "GET", "/api/alice/notebooks", nil)
	assert.Len(t, decodeData[[]dto.CollectionResponse](t, env), 2)

	_, env = call(t, app, "GET", "/api/bob/notebooks", nil)
	assert.Empty(t, decodeData[[]dto.CollectionResponse](t, env), "users are isolated")
}

func TestAttachmentsOverHTTP(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	_, env := call(t, app, "POST", "/api/alice/notes", map[string]string{"title": "files"})
	note := decodeData[dto.NoteResponse](t, env)
	base := "/api/alice/notes/" + note.Id + "/attachments"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "hello.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("hello attachment\n"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", base, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var uploaded envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	resp.Body.Close()
	files := decodeData[[]dto.AttachmentResponse](t, uploaded)
	require.Len(t, files, 1)

	resp, err = app.Test(httptest.NewRequest("GET", base+"/"+files[0].Filename, nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello attachment\n", string(body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "hello.txt")

	status, _ := call(t, app, "POST", base, map[string]string{"not": "multipart"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, "DELETE", base+"/"+files[0].Filename, nil)
	assert.Equal(t, http.StatusOK, status)
	_, env = call(t, app, "GET", base, nil)
	assert.Empty(t, decodeData[[]dto.AttachmentResponse](t, env))
}

func TestSystemEndpoints(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JwtSecret = "s3cret"
	app := newTestApp(t, cfg)

	status, env := call(t, app, "GET", "/api/health", nil)
	require.Equal(t, http.StatusOK, status)
	health := decodeData[dto.HealthResponse](t, env)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3001, health.Port)

	_, env = call(t, app, "GET", "/api/config", nil)
	conf := decodeData[dto.ConfigResponse](t, env)
	assert.Equal(t, "http://localhost:3001", conf.BackendUrl)
	assert.Contains(t, conf.Limits.AllowedMimeTypes, "application/pdf")

	status, _ = call(t, app, "GET", "/api/alice/notes", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "user routes need a token when a secret is set")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "unsafe-none", resp.Header.Get("Cross-Origin-Embedder-Policy"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "noet_http_requests_total")
}

func TestStorageSwitchOverHTTP(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)
	_, _ = call(t, app, "POST", "/api/alice/notes", map[string]string{"title": "old"})

	target := filepath.Join(t.TempDir(), "elsewhere")
	status, env := call(t, app, "POST", "/api/storage/validate", map[string]string{"path": target})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decodeData[dto.ValidateStorageResponse](t, env).Valid)

	status, _ = call(t, app, "POST", "/api/storage/path", map[string]string{"path": target})
	require.Equal(t, http.StatusOK, status)

	_, env = call(t, app, "GET", "/api/storage/path", nil)
	assert.Equal(t, target, decodeData[dto.StoragePathResponse](t, env).Path)

	_, env = call(t, app, "GET", "/api/alice/notes", nil)
	assert.Empty(t, decodeData[[]dto.NoteMetadataResponse](t, env))

	_, env = call(t, app, "GET", "/api/logs?level=info", nil)
	logs := decodeData[[]logger.LogEntry](t, env)
	require.NotEmpty(t, logs)
	assert.Equal(t, "Notes base path changed", logs[0].Message)

	status, env = call(t, app, "GET", "/api/logs/"+logs[0].Id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, logs[0].Message, decodeData[logger.LogEntry](t, env).Message)

	status, _ = call(t, app, "GET", "/api/logs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
