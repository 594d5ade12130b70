package server

import (
	"github.com/gofiber/fiber/v2"
)

// Profile handles GET /profile_user/:userId/, showing the user's details
// and their tweets newest first.
func (s *Server) Profile(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	tweets, err := s.tweets.ListByUser(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return s.render(c, "profile_user", fiber.Map{
		"ProfileUser": user,
		"Tweets":      tweets,
	})
}
