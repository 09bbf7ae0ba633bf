package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/schedule-sync/config"
	"github.com/example/schedule-sync/database"
	"github.com/example/schedule-sync/modules/api"
	"github.com/example/schedule-sync/modules/auth"
	"github.com/example/schedule-sync/modules/google"
	"github.com/example/schedule-sync/modules/notification"
	"github.com/example/schedule-sync/modules/schedule"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Schedule Sync ===")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(notification.NewModule()) // Consumes sync failures
	app.Register(auth.NewModule(db, auth.SessionConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		TTL:       cfg.SessionTTL,
	}))
	app.Register(google.NewModule(google.ConfigFrom(cfg))) // Depends on auth
	app.Register(schedule.NewModule(db))                   // Depends on google
	app.Register(api.NewModule(api.ConfigFrom(cfg)))       // Depends on everything above

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				return database.Close(db)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Database: %s", cfg.DBDriver)
	if cfg.GoogleClientID == "" {
		log.Println("  Google Calendar sync: disabled (GOOGLE_CLIENT_ID not set)")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.Port)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  GET    /                          - Service banner")
	log.Println("  GET    /health                    - Health check")
	log.Println("  POST   /user/signup               - Register a new user")
	log.Println("  POST   /user/signin               - Sign in and start a session")
	log.Println("")
	log.Println("  Session Endpoints (auth cookie or Bearer token, renewed on every call):")
	log.Println("  PUT    /user/update               - Update name, email or password")
	log.Println("  POST   /user/google/token         - Link a Google account")
	log.Println("  GET    /user/google/access_token  - Get a fresh Google access token")
	log.Println("  GET    /user/notifications        - Schedules that failed to sync")
	log.Println("  GET    /schedule                  - List schedules")
	log.Println("  GET    /schedule/:id              - Get a schedule")
	log.Println("  POST   /schedule                  - Create a schedule")
	log.Println("  PUT    /schedule/:id              - Update a schedule")
	log.Println("  DELETE /schedule/:id              - Delete a schedule")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
