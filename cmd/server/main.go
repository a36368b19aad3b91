package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gridarena/server/internal/auth"
	"github.com/gridarena/server/internal/config"
	"github.com/gridarena/server/internal/handler"
	"github.com/gridarena/server/internal/logger"
	"github.com/gridarena/server/internal/middleware"
	"github.com/gridarena/server/internal/repository/postgres"
	redisrepo "github.com/gridarena/server/internal/repository/redis"
	"github.com/gridarena/server/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	playerRepo := postgres.NewPlayerRepo(db)
	catalogRepo := postgres.NewCatalogRepo(db)
	matchRepo := postgres.NewMatchRepo(db)

	// Auth (disabled when JWT_SECRET is empty)
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	registry := service.NewRegistry(cfg.LockTimeout)
	matchSvc := service.NewMatchService(playerRepo, catalogRepo, matchRepo, redisClient, registry, wsHub)
	actionSvc := service.NewActionService(matchRepo, redisClient, registry, wsHub)

	// Handlers
	matchHandler := handler.NewMatchHandler(matchSvc)
	actionHandler := handler.NewActionHandler(actionSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Dev token issue, only meaningful with auth enabled.
	if jwtMgr != nil {
		authHandler := handler.NewAuthHandler(jwtMgr)
		mux.HandleFunc("GET /auth/dev", authHandler.DevToken)
	}

	// Engine API
	api := http.NewServeMux()
	api.HandleFunc("GET /players", matchHandler.ListPlayers)
	api.HandleFunc("GET /units", matchHandler.ListUnits)
	api.HandleFunc("POST /games/create", matchHandler.CreateGame)
	api.HandleFunc("POST /games/{id}/accept", matchHandler.AcceptGame)
	api.HandleFunc("POST /games/{id}/decline", matchHandler.DeclineGame)
	api.HandleFunc("GET /games/pending", matchHandler.PendingGames)
	api.HandleFunc("GET /games/{id}/state", matchHandler.GetState)
	api.HandleFunc("GET /games/{id}/units/{stack_id}/actions", matchHandler.StackActions)
	api.HandleFunc("POST /games/{id}/move", actionHandler.SubmitAction)
	api.HandleFunc("POST /games/{id}/surrender", actionHandler.Surrender)

	mux.Handle("/arena/api/", http.StripPrefix("/arena/api", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /arena/api/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.ReadDeadline(cfg.ReadTimeout))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
