package api

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/example/schedule-sync/config"
	"github.com/example/schedule-sync/modules/auth"
	"github.com/example/schedule-sync/modules/google"
	"github.com/example/schedule-sync/modules/notification"
	"github.com/example/schedule-sync/modules/schedule"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
)

// Config holds the HTTP layer settings.
type Config struct {
	Port            int
	Cookie          CookieConfig
	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisAddr       string
}

// ConfigFrom picks the HTTP settings out of the process configuration.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Port: cfg.Port,
		Cookie: CookieConfig{
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		},
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		RedisAddr:       cfg.RedisAddr,
	}
}

// Ports bundles the module ports the HTTP layer talks to.
type Ports struct {
	Auth      auth.AuthPort
	Google    google.GooglePort
	Schedules schedule.SchedulePort
	Notices   notification.NoticePort
}

// APIModule is the HTTP API module.
type APIModule struct {
	cfg     Config
	app     *fiber.App
	ports   Ports
	storage *redis.Storage
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config) *APIModule {
	return &APIModule{cfg: cfg}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "google", "schedule", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.ports.Auth = auth.NewAuthAdapter(container)
	case "google":
		m.ports.Google = google.NewGoogleAdapter(container)
	case "schedule":
		m.ports.Schedules = schedule.NewScheduleAdapter(container)
	case "notification":
		m.ports.Notices = notification.NewNotificationAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.ports.Auth == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.ports.Google == nil {
		return fmt.Errorf("google dependency not set")
	}
	if m.ports.Schedules == nil {
		return fmt.Errorf("schedule dependency not set")
	}
	if m.ports.Notices == nil {
		return fmt.Errorf("notification dependency not set")
	}

	var store fiber.Storage
	if m.cfg.RedisAddr != "" {
		host, port := parseRedisAddr(m.cfg.RedisAddr)
		m.storage = redis.New(redis.Config{
			Host: host,
			Port: port,
		})
		store = m.storage
		log.Printf("[api] Rate limiter backed by Redis at %s", m.cfg.RedisAddr)
	}

	m.app = NewApp(m.ports, m.cfg, store)

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	err := m.app.Shutdown()
	if m.storage != nil {
		if cerr := m.storage.Close(); cerr != nil {
			log.Printf("[api] Error closing limiter storage: %v", cerr)
		}
	}
	return err
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// NewApp builds the Fiber application with all routes. A nil store keeps
// rate limiter counters in memory.
func NewApp(ports Ports, cfg Config, store fiber.Storage) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		ExposeHeaders: SessionHeader,
	}))

	h := NewHandlers(ports.Auth, ports.Google, ports.Schedules, ports.Notices, cfg.Cookie)
	session := SessionMiddleware(ports.Auth, cfg.Cookie)

	app.Get("/", h.Root)
	app.Get("/health", h.Health)

	user := app.Group("/user")
	credentials := rateLimit(cfg, store)
	user.Post("/signup", credentials, h.SignUp)
	user.Post("/signin", credentials, h.SignIn)
	user.Put("/update", session, h.UpdateUser)
	user.Post("/google/token", session, h.LinkGoogle)
	user.Get("/google/access_token", session, h.GoogleAccessToken)
	user.Get("/notifications", session, h.SyncNotices)

	schedules := app.Group("/schedule", session)
	schedules.Get("/", h.ListSchedules)
	schedules.Get("/:id", h.GetSchedule)
	schedules.Post("/", h.CreateSchedule)
	schedules.Put("/:id", h.UpdateSchedule)
	schedules.Delete("/:id", h.DeleteSchedule)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route not found")
	})

	return app
}

// rateLimit throttles credential endpoints per client IP.
func rateLimit(cfg Config, store fiber.Storage) fiber.Handler {
	if cfg.RateLimitMax <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		Storage:    store,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
	})
}

// parseRedisAddr splits "host:port", defaulting to localhost:6379.
func parseRedisAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	if host == "" {
		host = "localhost"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}
