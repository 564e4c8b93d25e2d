package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/yamabiko/liveroom/internal/cache"
	"github.com/yamabiko/liveroom/internal/database"
	"github.com/yamabiko/liveroom/internal/handlers"
	"github.com/yamabiko/liveroom/internal/middleware"
	"github.com/yamabiko/liveroom/internal/room"
	"github.com/yamabiko/liveroom/internal/user"
)

func main() {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	ctx := context.Background()

	store, err := database.Connect(ctx)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	// Token cache is optional: without REDIS_ADDR every auth hits Postgres.
	var tokenCache *cache.Client
	if os.Getenv("REDIS_ADDR") != "" {
		tokenCache, err = cache.Connect()
		if err != nil {
			logger.Warnf("redis unavailable, token cache disabled: %v", err)
		}
		if tokenCache != nil {
			defer tokenCache.Close()
		}
	}

	users := user.NewService(store, tokenCache, logger)
	rooms := room.NewManager(store, logger)
	srv := handlers.New(users, rooms, logger)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.LogMiddleware(logger)(srv.Routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()
	logger.Infof("listening on %s", addr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}
}
