package server

import (
	"errors"

	"pictweet/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// SignupForm handles GET /signup/.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return s.render(c, "signup", fiber.Map{
		"Form": &SignupForm{},
	})
}

// Signup handles POST /signup/. A successful registration logs the new
// user in and lands them on the feed.
func (s *Server) Signup(c *fiber.Ctx) error {
	form := parseSignupForm(c)
	errs := form.Validate()

	if _, taken := errs["username"]; !taken {
		existing, err := s.users.GetByUsername(c.Context(), form.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			errs["username"] = "Username is already taken"
		}
	}
	if _, taken := errs["email"]; !taken {
		existing, err := s.users.GetByEmail(c.Context(), form.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			errs["email"] = "Email is already registered"
		}
	}

	if len(errs) > 0 {
		return s.render(c, "signup", fiber.Map{
			"Form":   form,
			"Errors": errs,
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password1), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: string(hash),
	}
	if err := s.users.Create(c.Context(), user); err != nil {
		// A concurrent signup can slip past the checks above and hit
		// the unique index instead. The winning row tells which field
		// collided.
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			if existing, lerr := s.users.GetByUsername(c.Context(), form.Username); lerr == nil && existing != nil {
				errs["username"] = "Username is already taken"
			}
			if existing, lerr := s.users.GetByEmail(c.Context(), form.Email); lerr == nil && existing != nil {
				errs["email"] = "Email is already registered"
			}
			if len(errs) == 0 {
				errs["username"] = "Username is already taken"
			}
			return s.render(c, "signup", fiber.Map{
				"Form":   form,
				"Errors": errs,
			})
		}
		return err
	}

	if err := s.sessions.Create(c, user.ID); err != nil {
		return models.NewInternalError(err)
	}

	return c.Redirect("/tweet/", fiber.StatusSeeOther)
}

// LoginForm handles GET /login/.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, "login", fiber.Map{
		"Form": &LoginForm{},
	})
}

// Login handles POST /login/. Unknown usernames and wrong passwords get
// the same answer so the form does not leak which accounts exist.
func (s *Server) Login(c *fiber.Ctx) error {
	form := parseLoginForm(c)

	fail := func() error {
		return s.render(c, "login", fiber.Map{
			"Form":   &LoginForm{Username: form.Username},
			"Errors": map[string]string{"login": "Invalid username or password"},
		})
	}

	if form.Username == "" || form.Password == "" {
		return fail()
	}

	user, err := s.users.GetByUsername(c.Context(), form.Username)
	if err != nil {
		return err
	}
	if user == nil {
		return fail()
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		return fail()
	}

	if err := s.sessions.Create(c, user.ID); err != nil {
		return models.NewInternalError(err)
	}

	return c.Redirect("/tweet/", fiber.StatusSeeOther)
}

// Logout handles /logout/ on any method. Destroying an already-absent
// session is a no-op, so logging out twice is harmless.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.sessions.Destroy(c)
	return c.Redirect("/tweet/", fiber.StatusSeeOther)
}
