package server

import (
	"strings"

	"pictweet/internal/models"
	"pictweet/internal/session"

	"github.com/gofiber/fiber/v2"
)

// ListTweets handles GET / and GET /tweet/. An optional ?q= narrows the
// feed to tweets whose text contains the query, case-insensitively.
func (s *Server) ListTweets(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))

	tweets, err := s.tweets.List(c.Context(), query)
	if err != nil {
		return err
	}

	return s.render(c, "tweet_list", fiber.Map{
		"Tweets": tweets,
		"Query":  query,
	})
}

// NewTweetForm handles GET /tweet/new/.
func (s *Server) NewTweetForm(c *fiber.Ctx) error {
	return s.render(c, "tweet_create", fiber.Map{
		"Form": &TweetForm{},
	})
}

// CreateTweet handles POST /tweet/new/. The author is always the
// logged-in user; any author field in the request body is ignored.
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	uid, ok := session.UserID(c)
	if !ok {
		return models.NewUnauthorizedError("login required")
	}

	form := parseTweetForm(c)
	errs := form.Validate()

	name, content, imgErr := readImageUpload(c)
	if imgErr != "" {
		errs["image"] = imgErr
	}

	if len(errs) > 0 {
		return s.render(c, "tweet_create", fiber.Map{
			"Form":   form,
			"Errors": errs,
		})
	}

	tweet := &models.Tweet{
		Text:   form.Text,
		UserID: uid,
	}
	if content != nil {
		path, err := s.store.SaveImage(name, content)
		if err != nil {
			return models.NewInternalError(err)
		}
		tweet.ImagePath = path
	}

	if err := s.tweets.Create(c.Context(), tweet); err != nil {
		return err
	}

	return c.Redirect("/tweet/", fiber.StatusSeeOther)
}

// TweetDetail handles GET /tweet/:id/.
func (s *Server) TweetDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	tweet, err := s.tweets.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	comments, err := s.comments.ListByTweet(c.Context(), tweet.ID)
	if err != nil {
		return err
	}

	return s.render(c, "tweet_detail", fiber.Map{
		"Tweet":    tweet,
		"Comments": comments,
		"Form":     &CommentForm{},
	})
}

// EditTweetForm handles GET /tweet/:id/edit/.
func (s *Server) EditTweetForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	tweet, err := s.tweets.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	if !s.canModify(c, tweet) {
		return s.renderError(c, fiber.StatusForbidden, "You cannot modify this tweet")
	}

	return s.render(c, "tweet_edit", fiber.Map{
		"Tweet": tweet,
		"Form":  &TweetForm{Text: tweet.Text},
	})
}

// UpdateTweet handles POST /tweet/:id/edit/. A newly uploaded image
// replaces the previous one; leaving the file input empty keeps it.
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	tweet, err := s.tweets.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	if !s.canModify(c, tweet) {
		return s.renderError(c, fiber.StatusForbidden, "You cannot modify this tweet")
	}

	form := parseTweetForm(c)
	errs := form.Validate()

	name, content, imgErr := readImageUpload(c)
	if imgErr != "" {
		errs["image"] = imgErr
	}

	if len(errs) > 0 {
		return s.render(c, "tweet_edit", fiber.Map{
			"Tweet":  tweet,
			"Form":   form,
			"Errors": errs,
		})
	}

	tweet.Text = form.Text
	if content != nil {
		path, err := s.store.SaveImage(name, content)
		if err != nil {
			return models.NewInternalError(err)
		}
		if tweet.ImagePath != "" {
			// Old file is already replaced in the row; a leak here is
			// preferable to failing the update.
			_ = s.store.Remove(tweet.ImagePath)
		}
		tweet.ImagePath = path
	}

	if err := s.tweets.Update(c.Context(), tweet); err != nil {
		return err
	}

	return c.Redirect("/tweet/", fiber.StatusSeeOther)
}

// DeleteTweet handles GET /tweet/:id/delete/. Deleting removes the
// tweet, all of its comments and its image file.
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	tweet, err := s.tweets.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	if !s.canModify(c, tweet) {
		return s.renderError(c, fiber.StatusForbidden, "You cannot modify this tweet")
	}

	if err := s.tweets.Delete(c.Context(), tweet.ID); err != nil {
		return err
	}
	if tweet.ImagePath != "" {
		_ = s.store.Remove(tweet.ImagePath)
	}

	return c.Redirect("/tweet/", fiber.StatusSeeOther)
}
