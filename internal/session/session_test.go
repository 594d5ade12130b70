package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"pictweet/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Session{}))
	return db
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// sessionTestApp builds a tiny app: /login starts a session for user 42,
// /me reports the resolved user, /logout destroys the session.
func sessionTestApp(m *Manager) *fiber.App {
	app := fiber.New()
	app.Use(m.Middleware())
	app.Post("/login", func(c *fiber.Ctx) error {
		if err := m.Create(c, 42); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		uid, ok := UserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(strconv.FormatUint(uint64(uid), 10))
	})
	app.All("/logout", func(c *fiber.Ctx) error {
		m.Destroy(c)
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func extractCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	db := setupSessionTestDB(t)
	m := NewManager(db, setupTestRedis(t), "test-secret", time.Hour)
	app := sessionTestApp(m)

	// Login sets a cookie and persists a session row.
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
	require.NoError(t, err)
	cookie := extractCookie(t, resp)

	var count int64
	db.Model(&models.Session{}).Count(&count)
	assert.EqualValues(t, 1, count)

	// Cookie resolves to the user.
	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Logout revokes the session; replaying the old cookie is anonymous.
	req = httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	_, err = app.Test(req, -1)
	require.NoError(t, err)

	db.Model(&models.Session{}).Count(&count)
	assert.EqualValues(t, 0, count)

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddleware_TamperedToken(t *testing.T) {
	db := setupSessionTestDB(t)
	m := NewManager(db, nil, "test-secret", time.Hour)
	app := sessionTestApp(m)

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
	require.NoError(t, err)
	cookie := extractCookie(t, resp)

	// Flip a character in the signature.
	tampered := *cookie
	tampered.Value = tampered.Value[:len(tampered.Value)-2] + "xx"

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&tampered)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddleware_ExpiredSession(t *testing.T) {
	db := setupSessionTestDB(t)
	m := NewManager(db, nil, "test-secret", time.Hour)

	sess := &models.Session{ID: "stale", UserID: 7, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, db.Create(sess).Error)

	token, err := m.signToken(sess)
	require.NoError(t, err)

	app := sessionTestApp(m)
	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddleware_NilRedisFallsBackToDB(t *testing.T) {
	db := setupSessionTestDB(t)
	m := NewManager(db, nil, "test-secret", time.Hour)
	app := sessionTestApp(m)

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
	require.NoError(t, err)
	cookie := extractCookie(t, resp)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	db := setupSessionTestDB(t)
	m := NewManager(db, nil, "test-secret", time.Hour)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/private", RequireLogin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/private", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login/", resp.Header.Get("Location"))
}
