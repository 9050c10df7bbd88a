package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
	"github.com/iliyamo/studio-project-hub/internal/config"
	"github.com/iliyamo/studio-project-hub/internal/database"
	"github.com/iliyamo/studio-project-hub/internal/handler"
	"github.com/iliyamo/studio-project-hub/internal/middleware"
	"github.com/iliyamo/studio-project-hub/internal/queue"
	"github.com/iliyamo/studio-project-hub/internal/repository"
	"github.com/iliyamo/studio-project-hub/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	projects := repository.NewProjectRepo(db)
	svc := auth.NewService(users, sessions, cfg.TokenConfig(), cfg.BcryptCost)

	// Audit sink drains auth events into logs/auth-audit.log; it keeps
	// reconnecting on its own and never blocks request handling.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient() // nil disables rate limiting
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:     handler.NewAuthHandler(svc),
		Admin:    handler.NewAdminHandler(svc),
		Projects: handler.NewProjectHandler(projects),
		Tokens:   cfg.TokenConfig(),
		Users:    users,
		Store:    projects,
		Limiter:  middleware.NewFixedWindow(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
