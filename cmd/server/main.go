package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/velora-cms/velora/internal/auth"
	"github.com/velora-cms/velora/internal/config"
	"github.com/velora-cms/velora/internal/database"
	"github.com/velora-cms/velora/internal/handler"
	"github.com/velora-cms/velora/internal/queue"
	"github.com/velora-cms/velora/internal/repository"
	"github.com/velora-cms/velora/internal/router"
	"github.com/velora-cms/velora/internal/service"
)

func main() {
	// A missing .env is fine in production where variables come from
	// the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	// Redis powers the response cache and the auth rate limiter; a nil
	// client disables both rather than blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, caching and rate limiting disabled")
	}

	codec := auth.NewTokenCodec(auth.Options{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})

	users := repository.NewUserRepo(db)
	items := repository.NewContentRepo(db)
	settings := repository.NewSettingRepo(db)

	authHandler := handler.NewAuthHandler(codec, users, handler.AuthOptions{
		BcryptCost:    cfg.BcryptCost,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		SecureCookies: cfg.SecureCookies,
	})
	authHandler.Publish = service.PublishUserSignedUp

	// Background consumer for the signup event queue.
	go queue.StartSignupConsumer()

	e := echo.New()
	router.Register(e, router.Deps{
		Cfg:        cfg,
		Codec:      codec,
		Auth:       authHandler,
		Content:    handler.NewContentHandler(items),
		AdminUsers: handler.NewAdminUserHandler(users, cfg.BcryptCost),
		Settings:   handler.NewSettingsHandler(settings),
		Redis:      rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
