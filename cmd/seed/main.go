// Command seed fills the configured database with demo users, tweets
// and comments. All seeded accounts share the password printed on exit.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"pictweet/internal/config"
	"pictweet/internal/database"
	"pictweet/internal/middleware"
	"pictweet/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.TweetsPerUser, "tweets", opts.TweetsPerUser, "tweets per user")
	flag.IntVar(&opts.CommentsPerUser, "comments", opts.CommentsPerUser, "comments per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := seed.Run(context.Background(), db, opts); err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	middleware.Logger.Info("seeding complete",
		slog.Int("users", opts.Users),
		slog.Int("tweets_per_user", opts.TweetsPerUser),
		slog.String("password", opts.Password),
	)
}
