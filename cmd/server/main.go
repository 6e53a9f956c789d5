package main

import (
	"battlezone/internal/api"        // Custom package for API handlers
	"battlezone/internal/config"     // Custom package for configuration
	"battlezone/internal/db"         // Store selection
	"battlezone/internal/domain"     // Domain models
	"battlezone/internal/engine"     // Platform operations
	"battlezone/internal/logger"     // Logger setup
	"battlezone/internal/metrics"    // Prometheus collectors
	"battlezone/internal/middleware" // Custom package for middleware
	"battlezone/internal/notify"     // Account notifications
	"battlezone/internal/store"      // Persistence layer
	"battlezone/internal/utils"      // Cache and JWT helpers
	"context"                        // context package is needed for Redis operations
	"errors"                         // Server shutdown result
	"net/http"                       // HTTP server
	"os"                             // Interrupt signal
	"os/signal"                      // Stop signal handling
	"syscall"                        // SIGTERM
	"time"                           // CORS max age

	"github.com/gin-contrib/cors"      // CORS middleware
	"github.com/gin-contrib/requestid" // Request id middleware
	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/redis/go-redis/v9"     // Redis client
	"github.com/sirupsen/logrus"       // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Setup logger
	logger.Init(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		Filename:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})

	// Connect to the configured store
	st, err := db.OpenStore(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.DBDriver == config.DriverMemory {
		seedAdmin(st, cfg)
	}

	// Setup Redis client; caching is skipped without an address
	var cache *utils.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = utils.NewCache(redisClient, cfg.CacheTTL)
	}

	// Account notifications go to RabbitMQ when configured, else to the log
	var notifier engine.Notifier = notify.LogSender{}
	var sender *notify.AMQPSender
	if cfg.AMQPURL != "" {
		sender, err = notify.NewAMQPSender(cfg.AMQPURL, cfg.AMQPExchange, logrus.StandardLogger())
		if err != nil {
			logrus.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		notifier = sender
	}

	rec := metrics.New()
	deps := &api.Deps{
		Engine:  engine.New(st, engine.WithNotifier(notifier)),
		Cache:   cache,
		Metrics: rec,
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.New() // Gin router instance
	r.Use(
		gin.Recovery(),             // Turn panics into 500s
		requestid.New(),            // X-Request-ID on every request
		middleware.RequestLogger(), // Access log
		rec.Middleware(),           // Request latency histogram
		cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	)

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	r.GET("/metrics", gin.WrapH(rec.Handler())) // Prometheus scrape endpoint
	api.RegisterRoutes(r, deps, cfg.JWTSecret, st)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort, // Listen on cfg.AppPort
		Handler:           r,                 // Gin router
		ReadHeaderTimeout: 10 * time.Second,  // Slow header guard
	}

	// Serve until SIGINT or SIGTERM, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := serve(ctx, srv, shutdownTimeout); err != nil {
		logrus.Errorf("server stopped: %v", err)
	}

	// Requests are drained, so no event is published after this point
	if sender != nil {
		if err := sender.Close(); err != nil {
			logrus.Warnf("failed to close RabbitMQ connection: %v", err)
		}
	}
	logrus.Info("Server exited")
}

// shutdownTimeout bounds how long in-flight requests may take after a stop signal
const shutdownTimeout = 10 * time.Second

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
// A listener failure is returned without waiting for ctx.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err // Could not listen
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// seedAdmin creates an organiser account in an empty memory store and logs
// a token for it, so a development server is usable straight away.
func seedAdmin(st store.Store, cfg *config.Config) {
	admin := &domain.User{Name: "Admin", Email: "admin@localhost", Role: domain.RoleAdmin}
	if err := st.CreateUser(context.Background(), admin); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
	token, err := utils.GenerateJWT(admin.ID, admin.Role, cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logrus.Fatalf("failed to issue admin token: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id": admin.ID, // Seeded account
		"token":   token,    // Bearer token
	}).Warn("Memory store seeded with admin account")
}
