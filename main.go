package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := SetupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("logging")
	}
	gin.SetMode(gin.ReleaseMode)

	var (
		db    *DB
		stats *Analytics
		opts  []GameOption
	)
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database")
		}
		stats = NewAnalytics(db)
		opts = append(opts, WithRecorder(stats))
		log.Info().Str("path", cfg.DBPath).Msg("round recording enabled")
	}

	admin := NewAdmin(cfg.AdminSecret)
	if admin != nil {
		token, err := admin.IssueToken(adminTokenExpiry)
		if err != nil {
			log.Fatal().Err(err).Msg("issue operator token")
		}
		log.Info().Str("token", token).Dur("ttl", adminTokenExpiry).Msg("operator token")
	}

	game := NewGame(opts...)
	go game.Run()

	hub := NewHub(game)
	srv := NewServer(cfg, game, hub, stats, admin)
	server := &http.Server{Addr: cfg.Addr, Handler: srv.Router()}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("client", cfg.ClientDir).Msg("server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	hub.CloseAll()
	game.Stop()
	if stats != nil {
		stats.Stop()
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
	log.Info().Msg("bye")
}
