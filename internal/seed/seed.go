// Package seed fills a development database with plausible demo data.
package seed

import (
	"context"
	"fmt"
	"strings"

	"pictweet/internal/models"
	"pictweet/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data Run generates.
type Options struct {
	Users           int
	TweetsPerUser   int
	CommentsPerUser int
	// Password is assigned to every seeded account so they can be used
	// to log in during development.
	Password string
}

// DefaultOptions matches a small but browsable demo feed.
func DefaultOptions() Options {
	return Options{
		Users:           5,
		TweetsPerUser:   4,
		CommentsPerUser: 3,
		Password:        "Seeded123",
	}
}

// Run populates the database. It is additive; running it twice doubles
// the data, so point it at a fresh database.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	users := repository.NewUserRepository(db)
	tweets := repository.NewTweetRepository(db)
	comments := repository.NewCommentRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	var seeded []*models.User
	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			Username: fakeUsername(),
			Email:    gofakeit.Email(),
			Password: string(hash),
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		seeded = append(seeded, user)
	}

	var allTweets []*models.Tweet
	for _, user := range seeded {
		for i := 0; i < opts.TweetsPerUser; i++ {
			tweet := &models.Tweet{
				Text:   gofakeit.Sentence(gofakeit.Number(4, 14)),
				UserID: user.ID,
			}
			if err := tweets.Create(ctx, tweet); err != nil {
				return fmt.Errorf("seeding tweet: %w", err)
			}
			allTweets = append(allTweets, tweet)
		}
	}

	for _, user := range seeded {
		for i := 0; i < opts.CommentsPerUser && len(allTweets) > 0; i++ {
			target := allTweets[gofakeit.Number(0, len(allTweets)-1)]
			comment := &models.Comment{
				Text:    gofakeit.Sentence(gofakeit.Number(3, 10)),
				UserID:  user.ID,
				TweetID: target.ID,
			}
			if err := comments.Create(ctx, comment); err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
		}
	}

	return nil
}

// fakeUsername produces a name that passes the registration rules.
func fakeUsername() string {
	name := strings.ToLower(gofakeit.Username())
	name = strings.Trim(name, "_-")
	if len(name) < 3 {
		name = name + gofakeit.DigitN(3)
	}
	if len(name) > 30 {
		name = name[:30]
	}
	return strings.Trim(name, "_-")
}
