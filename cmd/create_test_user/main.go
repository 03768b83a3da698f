package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

func main() {
	email := flag.String("email", "tester@example.com", "account email")
	name := flag.String("name", "Tester", "display name")
	password := flag.String("password", "password123", "account password")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()
	backend, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open storage", "error", err)
	}
	defer backend.Close()

	auths := service.NewAuthService(backend.Users, service.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL), 0)

	u, token, err := auths.Register(ctx, service.RegisterInput{Email: *email, Name: *name, Password: *password})
	if errors.Is(err, repository.ErrEmailTaken) {
		logger.Info("user already exists, signing in", "email", *email)
		u, token, err = auths.Login(ctx, service.LoginInput{Email: *email, Password: *password})
	}
	if err != nil {
		logger.Fatal("create test user failed", "error", err)
	}

	logger.Info("test user ready", "id", u.ID, "email", u.Email, "created_at", u.CreatedAt)
	fmt.Println(token)
}
