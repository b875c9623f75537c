package middleware

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postsync/configs"
	"github.com/maheshrc27/postsync/internal/service"
	"github.com/maheshrc27/postsync/pkg/utils"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type stubKeyService struct {
	service.ApiKeyService
	keys map[string]int64
}

func (s stubKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	id, ok := s.keys[apiKey]
	if !ok {
		return 0, service.ErrApiKeyUnknown
	}
	return id, nil
}

var testCfg = config.Config{SecretKey: "test-secret", CookieName: "session"}

func newAuthApp() *fiber.App {
	app := fiber.New()
	m := NewAuthMiddleware(testCfg, stubKeyService{keys: map[string]int64{"good-key": 42}})
	app.Get("/me", m.AuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(UserIDKey).(string))
	})
	return app
}

func body(t *testing.T, resp *http.Response) string {
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAuthMiddleware_ApiKey(t *testing.T) {
	app := newAuthApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me?api_key=good-key", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "42", body(t, resp))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/me?api_key=bad", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	app := newAuthApp()
	token, err := utils.GenerateToken(testCfg.SecretKey, "7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7", body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_Missing(t *testing.T) {
	resp, err := newAuthApp().Test(httptest.NewRequest(http.MethodGet, "/me", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func newWebhookApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/sync", WebhookSecret(config.Webhook{Secret: secret}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func TestWebhookSecret(t *testing.T) {
	app := newWebhookApp("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/sync", nil)
	req.Header.Set(WebhookSecretHeader, "s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/sync", nil)
	req.Header.Set(WebhookSecretHeader, "wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"Invalid webhook secret"}`, body(t, resp))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookSecret_UnsetIsPublic(t *testing.T) {
	resp, err := newWebhookApp("").Test(httptest.NewRequest(http.MethodGet, "/sync", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

