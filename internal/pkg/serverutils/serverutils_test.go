package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body io.Reader) BaseResponse[json.RawMessage] {
	t.Helper()
	var res BaseResponse[json.RawMessage]
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestErrorHandlerMapping(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.NewNopLogger())})
	app.Get("/missing", func(c *fiber.Ctx) error { return apperror.NotFound("note %s not found", "abc") })
	app.Get("/stale", func(c *fiber.Ctx) error { return apperror.Conflict("version mismatch") })
	app.Get("/disk", func(c *fiber.Ctx) error {
		return apperror.IO("write metadata", errors.New("/secret/path: permission denied"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("raw failure") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusUnprocessableEntity, "bad body") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/missing", 404, "note abc not found"},
		{"/stale", 409, "version mismatch"},
		{"/disk", 500, internalErrorMessage},
		{"/plain", 500, internalErrorMessage},
		{"/fiber", 422, "bad body"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Name     string `json:"name" validate:"required"`
		Color    string `json:"color" validate:"omitempty,hexcolor_short"`
		Position string `json:"position" validate:"required,oneof=before after"`
	}

	assert.NoError(t, ValidateRequest(req{Name: "a", Color: "#fff", Position: "after"}))

	err := ValidateRequest(req{Color: "#fff", Position: "before"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "name is required")

	err = ValidateRequest(req{Name: "a", Color: "red", Position: "before"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color")

	err = ValidateRequest(req{Name: "a", Position: "inside"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position must be one of")
}

func signToken(t *testing.T, secret, userId string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestUserScope(t *testing.T) {
	newApp := func(secret string) *fiber.App {
		app := fiber.New()
		app.Get("/:userId/ping", UserScope(secret), func(c *fiber.Ctx) error {
			return c.SendString(UserId(c))
		})
		return app
	}

	t.Run("open mode validates the id only", func(t *testing.T) {
		app := newApp("")
		resp, err := app.Test(httptest.NewRequest("GET", "/alice_01/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "alice_01", string(body))

		resp, err = app.Test(httptest.NewRequest("GET", "/al.ice/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("token required when secret set", func(t *testing.T) {
		app := newApp("s3cret")

		resp, err := app.Test(httptest.NewRequest("GET", "/alice/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)

		req := httptest.NewRequest("GET", "/alice/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", "bob"))
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)

		req = httptest.NewRequest("GET", "/alice/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong", "alice"))
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)

		req = httptest.NewRequest("GET", "/alice/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", "alice"))
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest("GET", "/alice/ping?token="+signToken(t, "s3cret", "alice"), nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode, "query token for websocket handshakes")
	})
}

func TestCacheStorage(t *testing.T) {
	s := NewCacheStorage(time.Minute)

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	buf := []byte("1")
	require.NoError(t, s.Set("ip", buf, time.Minute))
	buf[0] = '9'

	got, err = s.Get("ip")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got, "stored value must not alias the caller's buffer")

	require.NoError(t, s.Set("short", []byte("x"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	got, _ = s.Get("short")
	assert.Nil(t, got)

	require.NoError(t, s.Delete("ip"))
	got, _ = s.Get("ip")
	assert.Nil(t, got)

	require.NoError(t, s.Set("a", []byte("x"), 0))
	require.NoError(t, s.Reset())
	got, _ = s.Get("a")
	assert.Nil(t, got)
	assert.NoError(t, s.Close())
}
