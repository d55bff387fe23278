package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"secondbrain/internal/api"
	"secondbrain/internal/chat"
	"secondbrain/internal/config"
	"secondbrain/internal/db"
	"secondbrain/internal/llm"
	"secondbrain/internal/share"
	"secondbrain/internal/tags"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}

	gateway, err := llm.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model, cfg.GenerationTimeout)
	if err != nil {
		logger.Fatal("failed to initialize generation gateway", zap.Error(err))
	}

	resolver := tags.NewResolver(database)
	registry := share.NewRegistry(database)
	assembler := chat.NewAssembler(database, database)
	chatService := chat.NewService(database, gateway, assembler, logger)
	auth := api.NewStaticAuthenticator(cfg.AuthTokens)

	handler := api.NewHandler(database, resolver, registry, chatService, auth, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = multierr.Append(g.Wait(), database.Close())
	if err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("server stopped")
}
