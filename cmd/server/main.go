package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kyiku/planet-jigsaw-back/internal/config"
	"github.com/kyiku/planet-jigsaw-back/internal/handler"
	"github.com/kyiku/planet-jigsaw-back/internal/middleware"
	"github.com/kyiku/planet-jigsaw-back/internal/session"
	"github.com/kyiku/planet-jigsaw-back/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	e := echo.New()

	// Middleware
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			e.Logger.Infof("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.CORSMiddleware(cfg.AllowedOrigin))

	// Initialize dependencies
	sessionStore := session.NewSessionStoreWithExpiry(cfg.SessionTTL)
	go cleanupSessions(sessionStore, time.Minute)

	gameHandler := handler.NewGameHandler(sessionStore, cfg)
	gameHandler.SetLogger(logger)

	// S3 publishing is optional; rounds are always served from memory
	if cfg.S3Bucket != "" {
		s3Adapter, err := storage.NewS3Adapter(context.TODO(), cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Printf("Warning: Failed to load AWS config: %v (rounds will not be published)", err)
		} else {
			gameHandler.SetPublisher(storage.NewS3Client(s3Adapter, cfg.S3Bucket, cfg.CloudfrontDomain))
		}
	}

	wsHandler := handler.NewWebSocketHandler(sessionStore, middleware.OriginChecker(cfg.AllowedOrigin))
	wsHandler.SetLogger(logger)
	healthHandler := handler.NewHealthHandler()

	// Health check (root level for ALB)
	e.GET("/health", healthHandler.Check)

	// WebSocket endpoint
	e.GET("/ws", wsHandler.Connect)

	// API routes
	api := e.Group("/api")
	api.GET("/health", healthHandler.Check)

	game := api.Group("/game")
	game.POST("/start", gameHandler.Start, middleware.RateLimitMiddleware(cfg.RateLimit, time.Minute))
	game.GET("/state", gameHandler.State)
	game.POST("/hint", gameHandler.Hint)
	game.POST("/scramble", gameHandler.Scramble)
	game.POST("/next", gameHandler.Next)
	game.POST("/move", gameHandler.Move)
	game.POST("/drop", gameHandler.Drop)
	game.GET("/raster.png", gameHandler.Raster)
	game.GET("/hint.png", gameHandler.HintImage)
	game.GET("/solved.png", gameHandler.Solved)
	game.GET("/pieces/:id", gameHandler.Piece)

	// Log registered endpoints
	log.Println("Registered endpoints:")
	for _, r := range e.Routes() {
		log.Printf("  %-6s %s", r.Method, r.Path)
	}
	log.Printf("Rounds: %v, grid %d, raster %dpx, drop policy %s",
		cfg.Rounds, cfg.GridSize, cfg.RasterSize, cfg.DropPolicy)

	// Start server
	log.Printf("Starting server on :%s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		e.Logger.Fatal(err)
	}
}

// cleanupSessions drops expired games periodically.
func cleanupSessions(store *session.SessionStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if n := store.Cleanup(); n > 0 {
			log.Printf("Removed %d expired sessions", n)
		}
	}
}
