package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/paperfeed/paperfeed/internal/config"
	"github.com/paperfeed/paperfeed/mastodon"
	"github.com/paperfeed/paperfeed/server"
	"github.com/paperfeed/paperfeed/sessions"
	"github.com/paperfeed/paperfeed/sessions/redisrepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.MustLoad()
	setupLogging(cfg)
	displayAppname(cfg.AppName)

	client, err := mastodon.New(mastodon.Config{
		InstanceURL:  cfg.InstanceURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		Scope:        cfg.Scope,
		Timeout:      cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("mastodon.New: %w", err)
	}

	sessionRepo, err := newSessionRepo(cfg)
	if err != nil {
		return fmt.Errorf("newSessionRepo: %w", err)
	}

	srv, err := server.New(cfg, sessionRepo, client)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.Addr(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func setupLogging(cfg config.Config) {
	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func newSessionRepo(cfg config.Config) (sessions.Repo, error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("Using in-memory session store")
		return sessions.NewInMemoryRepo(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := redisrepo.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redisrepo.Connect: %w", err)
	}
	log.Info().Msg("Using redis session store")
	return redisrepo.New(client, cfg.SessionTTL), nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
