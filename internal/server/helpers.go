package server

import (
	"pictweet/internal/models"
	"pictweet/internal/session"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a route parameter as a positive integer. A
// non-numeric or non-positive value is treated like a missing entity,
// matching the original router which only matched integer ids.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError("Page", c.Path())
	}
	return uint(id), nil
}

// render wraps c.Render, adding the fields every template expects.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if _, ok := bind["Errors"]; !ok {
		bind["Errors"] = map[string]string{}
	}
	if uid, ok := session.UserID(c); ok {
		bind["CurrentUserID"] = uid
	}
	return c.Render(name, bind)
}

// renderError renders the generic error page with the given status.
func (s *Server) renderError(c *fiber.Ctx, status int, message string) error {
	return s.render(c.Status(status), "error", fiber.Map{
		"Status":  status,
		"Message": message,
	})
}

// canModify applies the ownership policy for tweet edit and delete. The
// default policy (EnforceOwnership off) mirrors the original application
// and lets any logged-in user through.
func (s *Server) canModify(c *fiber.Ctx, tweet *models.Tweet) bool {
	if !s.cfg.EnforceOwnership {
		return true
	}
	uid, ok := session.UserID(c)
	return ok && uid == tweet.UserID
}
