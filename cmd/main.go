package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/shawarmaKoders/Hedwig/internal/broker"
	"github.com/shawarmaKoders/Hedwig/internal/config"
	"github.com/shawarmaKoders/Hedwig/internal/domain"
	"github.com/shawarmaKoders/Hedwig/internal/handler"
	"github.com/shawarmaKoders/Hedwig/internal/history"
	"github.com/shawarmaKoders/Hedwig/internal/relay"
	"github.com/shawarmaKoders/Hedwig/internal/repository"
	"github.com/shawarmaKoders/Hedwig/internal/track"
	"github.com/shawarmaKoders/Hedwig/pkg/database"
	"github.com/shawarmaKoders/Hedwig/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	l := log.L()
	l.Info().Int("port", cfg.Server.Port).Msg("starting hedwig")

	// Database
	db, err := database.New(&cfg.Database)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.Room{}, &domain.ChatMessage{}); err != nil {
		l.Fatal().Err(err).Msg("failed to migrate database")
	}

	messageRepo := repository.NewGormMessageRepository(db)
	roomRepo := repository.NewGormRoomRepository(db)

	// Broker
	bus, err := broker.NewRedis(cfg.Redis)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer bus.Close()
	l.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")

	// Relay wiring
	var authorizer relay.Authorizer
	if cfg.Relay.EnforceMembership {
		authorizer = &relay.RoomGuard{Rooms: roomRepo}
	}

	loader := history.NewLoader(messageRepo)
	deps := relay.Deps{
		Broker:         bus,
		Messages:       messageRepo,
		History:        loader,
		Tracker:        track.NewTracker(),
		Authorizer:     authorizer,
		DisconnectWait: cfg.Relay.DisconnectWait,
	}

	// Router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(l))

	handler.NewWSHandler(deps, cfg.WebSocket).RegisterRoutes(router)
	handler.NewRoomHandler(roomRepo).RegisterRoutes(router)
	handler.NewHistoryHandler(loader).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		l.Info().Str("addr", addr).Msg("hedwig listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("stopped")
}
