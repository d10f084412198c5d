package main // Entry point package

import (
	"context"
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/contact-book/internal/avatar"
	"github.com/iliyamo/contact-book/internal/blacklist"
	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/database"
	"github.com/iliyamo/contact-book/internal/handler"
	"github.com/iliyamo/contact-book/internal/mailer"
	"github.com/iliyamo/contact-book/internal/middleware"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
	"github.com/iliyamo/contact-book/internal/router"
	queue_publisher "github.com/iliyamo/contact-book/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis backs the token blacklist.  When it is unreachable the service
	// still starts with an in-process list; logout then only holds within
	// this instance until Redis returns.
	var revoked blacklist.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		revoked = blacklist.NewRedisStore(rdb)
	} else {
		log.Printf("redis unavailable, falling back to in-memory blacklist")
		revoked = blacklist.NewMemoryStore()
	}

	avatars, err := avatar.NewStorage(cfg.AvatarsDir, "/avatars")
	if err != nil {
		log.Fatalf("avatar storage: %v", err)
	}

	users := repository.NewUserRepo(db)
	contacts := repository.NewContactRepo(db)

	authH := handler.NewAuthHandler(cfg, users, revoked, queue_publisher.PublishVerificationEmail)
	userH := handler.NewUserHandler(cfg, users, avatars, queue_publisher.PublishVerificationEmail)
	contactH := handler.NewContactHandler(contacts)

	// The verification mail consumer runs for the lifetime of the process
	// and reconnects on broker failures.
	go func() {
		if err := queue.StartVerificationConsumer(mailer.NewSenderFromEnv(), cfg.PublicBaseURL); err != nil {
			log.Printf("verification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Static("/avatars", cfg.AvatarsDir)

	gate := middleware.Auth(cfg.JWTSecret, users, revoked)
	router.RegisterRoutes(e)
	router.RegisterUsers(e, authH, userH, gate)
	router.RegisterContacts(e, contactH, gate)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
