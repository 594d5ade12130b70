package server

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pictweet/internal/config"
	"pictweet/internal/database"
	"pictweet/internal/repository"
	"pictweet/internal/session"
	"pictweet/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer builds a full application backed by an in-memory
// database, a miniredis instance and a throwaway upload directory.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Port:            "0",
		Env:             "test",
		DBDriver:        "sqlite",
		SessionSecret:   "test-session-secret-0123456789abcdef",
		SessionTTLHours: 1,
		UploadDir:       t.TempDir(),
	}

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	require.NoError(t, err)

	srv := &Server{
		cfg:      cfg,
		db:       db,
		redis:    rdb,
		users:    repository.NewUserRepository(db),
		tweets:   repository.NewTweetRepository(db),
		comments: repository.NewCommentRepository(db),
		sessions: session.NewManager(db, rdb, cfg.SessionSecret, time.Duration(cfg.SessionTTL())*time.Hour),
		store:    store,
	}
	return srv, srv.App()
}

// doForm posts url-encoded form values, attaching the session cookie
// when one is given.
func doForm(t *testing.T, app *fiber.App, method, target, cookie string, values url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", session.CookieName+"="+cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// doGet performs a GET with an optional session cookie.
func doGet(t *testing.T, app *fiber.App, target, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != "" {
		req.Header.Set("Cookie", session.CookieName+"="+cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// signupAndLogin registers a fresh account through the real signup
// endpoint and returns the session cookie value.
func signupAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp := doForm(t, app, http.MethodPost, "/signup/", "", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password1": {"Secret123!"},
		"password2": {"Secret123!"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotEmpty(t, cookie, "signup should set a session cookie")
	return cookie
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return string(body)
}

// multipartTweet builds a multipart body for the tweet forms, with an
// optional image file.
func multipartTweet(t *testing.T, text string, imageName string, image []byte, extra url.Values) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("text", text))
	for key, vals := range extra {
		for _, v := range vals {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doMultipart(t *testing.T, app *fiber.App, target, cookie string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	if cookie != "" {
		req.Header.Set("Cookie", session.CookieName+"="+cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// tinyPNG is a valid 1x1 png for upload tests.
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func redirectTarget(resp *http.Response) string {
	return resp.Header.Get("Location")
}

func detailPath(id uint) string {
	return fmt.Sprintf("/tweet/%d/", id)
}
