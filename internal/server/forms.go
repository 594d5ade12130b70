package server

import (
	"strings"

	"pictweet/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// The forms below mirror the application's HTML forms. Each Validate
// returns field-level errors keyed by input name; an empty map means the
// submission is acceptable.

// TweetForm carries the text field shared by the create and edit forms.
type TweetForm struct {
	Text string
}

func parseTweetForm(c *fiber.Ctx) *TweetForm {
	return &TweetForm{Text: strings.TrimSpace(c.FormValue("text"))}
}

func (f *TweetForm) Validate() map[string]string {
	errs := map[string]string{}
	if f.Text == "" {
		errs["text"] = "Text is required"
	}
	return errs
}

// CommentForm carries the single "comment" field of both comment entry
// points.
type CommentForm struct {
	Text string
}

func parseCommentForm(c *fiber.Ctx) *CommentForm {
	return &CommentForm{Text: strings.TrimSpace(c.FormValue("comment"))}
}

func (f *CommentForm) Validate() map[string]string {
	errs := map[string]string{}
	if f.Text == "" {
		errs["comment"] = "Comment is required"
	}
	return errs
}

// SignupForm is the registration form: password entered twice, both
// checked against the complexity rules.
type SignupForm struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}

func parseSignupForm(c *fiber.Ctx) *SignupForm {
	return &SignupForm{
		Username:  strings.TrimSpace(c.FormValue("username")),
		Email:     strings.TrimSpace(c.FormValue("email")),
		Password1: c.FormValue("password1"),
		Password2: c.FormValue("password2"),
	}
}

func (f *SignupForm) Validate() map[string]string {
	errs := map[string]string{}
	if err := validation.ValidateUsername(f.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validation.ValidateEmail(f.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := validation.ValidatePassword(f.Password1); err != nil {
		errs["password1"] = err.Error()
	}
	if f.Password2 != f.Password1 {
		errs["password2"] = "Passwords do not match"
	}
	return errs
}

// LoginForm is deliberately loose: any non-empty submission goes to the
// credential check, which answers with one generic error.
type LoginForm struct {
	Username string
	Password string
}

func parseLoginForm(c *fiber.Ctx) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
	}
}
