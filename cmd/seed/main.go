package main

import (
	"context"
	"flag"
	"os"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/observability"
	"quill/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of fake users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "posts per user")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "comments per post")
	flag.StringVar(&opts.Password, "password", opts.Password, "shared password for seeded accounts")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		observability.Logger.Error("Failed to load config", "error", err.Error())
		os.Exit(1)
	}

	if cfg.IsProduction() {
		observability.Logger.Error("refusing to seed a production database")
		os.Exit(1)
	}
	opts.SaltLen = cfg.ScryptSaltLen

	db, err := database.Connect(cfg)
	if err != nil {
		observability.Logger.Error("Failed to connect to database", "error", err.Error())
		os.Exit(1)
	}

	if err := seed.Run(context.Background(), db, opts); err != nil {
		observability.Logger.Error("Seeding failed", "error", err.Error())
		os.Exit(1)
	}
}
