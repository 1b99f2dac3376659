package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gitlab.com/dirk.krummacker/contact-directory/internal/config"
	"gitlab.com/dirk.krummacker/contact-directory/internal/logger"
	"gitlab.com/dirk.krummacker/contact-directory/internal/service"
	"gitlab.com/dirk.krummacker/contact-directory/internal/store"
)

// Usage example on the command line:
// > CONTACTS_PORT=8080 CONTACTS_DB_PATH=contatos.db GIN_MODE=release CONTACTS_HTTP_LOGGING=false go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", true)
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("could not open store")
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("could not close store")
		}
	}()

	router := service.SetupHttpRouter(service.NewDirectory(s), log, service.RouterConfig{
		HttpLogging: cfg.HttpLogging,
		CorsOrigins: cfg.CorsOrigins,
	})
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("driver", cfg.Database.Driver).Msg("contacts service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
