// Package session implements cookie-based login sessions. Each login
// creates a server-side session row; the cookie carries a signed token
// naming that row, so logout revokes the cookie immediately by deleting
// the row. Redis fronts the sessions table as a cache and the database
// remains authoritative.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"pictweet/internal/cache"
	"pictweet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CookieName is the login cookie set on successful signup or login.
const CookieName = "pictweet_session"

// Manager creates, resolves and destroys login sessions.
type Manager struct {
	db     *gorm.DB
	redis  *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewManager returns a Manager backed by the given database and an
// optional Redis client.
func NewManager(db *gorm.DB, rdb *redis.Client, secret string, ttl time.Duration) *Manager {
	return &Manager{db: db, redis: rdb, secret: []byte(secret), ttl: ttl}
}

// Create starts a session for userID and sets the login cookie.
func (m *Manager) Create(c *fiber.Ctx, userID uint) error {
	sess := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.db.WithContext(c.Context()).Create(sess).Error; err != nil {
		return err
	}
	_ = cache.SetJSON(c.Context(), m.redis, cacheKey(sess.ID), sess, m.ttl)

	token, err := m.signToken(sess)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	return nil
}

// Destroy revokes the current session, if any, and clears the cookie.
// Safe to call without a session.
func (m *Manager) Destroy(c *fiber.Ctx) {
	if raw := c.Cookies(CookieName); raw != "" {
		if _, sid, err := m.parseToken(raw); err == nil {
			m.db.WithContext(c.Context()).Delete(&models.Session{}, "id = ?", sid)
			_ = cache.Delete(c.Context(), m.redis, cacheKey(sid))
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

// Middleware resolves the login cookie and stores the authenticated user
// in c.Locals("userID"). Requests with a missing, invalid or revoked
// cookie proceed anonymously.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(CookieName)
		if raw == "" {
			return c.Next()
		}

		userID, sid, err := m.parseToken(raw)
		if err != nil {
			return c.Next()
		}

		sess, err := m.lookup(c.Context(), sid)
		if err != nil || sess.Expired() || sess.UserID != userID {
			return c.Next()
		}

		c.Locals("userID", userID)
		c.Locals("sessionID", sid)
		return c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login form.
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("userID") == nil {
			return c.Redirect("/login/", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user for the request, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok
}

func (m *Manager) signToken(sess *models.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(sess.UserID), 10),
		"sid": sess.ID,
		"exp": sess.ExpiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// parseToken verifies the cookie token and extracts user and session IDs.
func (m *Manager) parseToken(raw string) (uint, string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", errors.New("missing subject claim")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return 0, "", errors.New("missing session claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "", errors.New("invalid user ID in token")
	}
	return uint(userID), sid, nil
}

// lookup reads the session from Redis first and falls back to the
// database, refilling the cache on a hit.
func (m *Manager) lookup(ctx context.Context, sid string) (*models.Session, error) {
	var sess models.Session
	found, err := cache.GetJSON(ctx, m.redis, cacheKey(sid), &sess)
	if err == nil && found {
		return &sess, nil
	}

	if err := m.db.WithContext(ctx).First(&sess, "id = ?", sid).Error; err != nil {
		return nil, err
	}
	if ttl := time.Until(sess.ExpiresAt); ttl > 0 {
		_ = cache.SetJSON(ctx, m.redis, cacheKey(sid), &sess, ttl)
	}
	return &sess, nil
}

func cacheKey(sid string) string {
	return "sess:" + sid
}
