package server

import (
	"fmt"

	"pictweet/internal/models"
	"pictweet/internal/session"

	"github.com/gofiber/fiber/v2"
)

// CreateCommentInline handles POST /tweet/:id/, the comment form that
// sits on the detail page itself.
func (s *Server) CreateCommentInline(c *fiber.Ctx) error {
	return s.createCommentFor(c, "id")
}

// CreateComment handles POST /tweet/:tweetId/comment/, the standalone
// comment endpoint.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	return s.createCommentFor(c, "tweetId")
}

// createCommentFor validates and stores a comment on the tweet named by
// the given route parameter. A valid submission redirects back to the
// detail page; an invalid one re-renders the page with the error next to
// the form and no row written.
func (s *Server) createCommentFor(c *fiber.Ctx, param string) error {
	uid, ok := session.UserID(c)
	if !ok {
		return models.NewUnauthorizedError("login required")
	}

	id, err := parseID(c, param)
	if err != nil {
		return err
	}

	tweet, err := s.tweets.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	form := parseCommentForm(c)
	if errs := form.Validate(); len(errs) > 0 {
		comments, err := s.comments.ListByTweet(c.Context(), tweet.ID)
		if err != nil {
			return err
		}
		return s.render(c, "tweet_detail", fiber.Map{
			"Tweet":    tweet,
			"Comments": comments,
			"Form":     form,
			"Errors":   errs,
		})
	}

	comment := &models.Comment{
		Text:    form.Text,
		UserID:  uid,
		TweetID: tweet.ID,
	}
	if err := s.comments.Create(c.Context(), comment); err != nil {
		return err
	}

	return c.Redirect(fmt.Sprintf("/tweet/%d/", tweet.ID), fiber.StatusSeeOther)
}
