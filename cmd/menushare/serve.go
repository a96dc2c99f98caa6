package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/menushare/internal/config"
	"github.com/Skotchmaster/menushare/internal/db"
	"github.com/Skotchmaster/menushare/internal/es"
	"github.com/Skotchmaster/menushare/internal/httpserver"
	"github.com/Skotchmaster/menushare/internal/lineauth"
	"github.com/Skotchmaster/menushare/internal/logging"
	loggingmw "github.com/Skotchmaster/menushare/internal/middleware/logging"
	"github.com/Skotchmaster/menushare/internal/mykafka"
	"github.com/Skotchmaster/menushare/internal/repo"
	"github.com/Skotchmaster/menushare/internal/service"
	"github.com/Skotchmaster/menushare/internal/sharetoken"
	"github.com/Skotchmaster/menushare/internal/tokens"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP API",
		Action: func(c *cli.Context) error { return serve(c.Context) },
	}
}

func serve(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(openCtx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(openCtx, gdb)
	}
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db close", "error", err)
		}
	}()

	events := mykafka.New(cfg.KafkaBrokers)
	defer func() {
		if err := events.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, domain events disabled")
	}

	r := &repo.GormRepo{DB: gdb}

	authSvc := &service.AuthService{
		Repo: r,
		Issuer: &tokens.Issuer{
			AccessSecret:  cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTokenTTL,
			RefreshTTL:    cfg.RefreshTokenTTL,
		},
		Events: events,
	}
	if cfg.LineChannelID != "" {
		authSvc.Verifier = lineauth.NewClient(cfg.LineVerifyURL, cfg.LineChannelID)
	} else {
		logger.Warn("LINE_CHANNEL_ID not set, login identities are not verified")
	}

	menuSvc := &service.MenuService{Repo: r, Tokens: sharetoken.New(), Events: events}
	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg, logger)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search uses the database", "error", err)
		} else {
			index := es.NewMenuIndex(client, cfg.ESIndex)
			if err := index.EnsureIndex(ctx); err != nil {
				logger.Warn("elasticsearch index setup failed", "error", err)
			}
			menuSvc.Index = index
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))

	httpserver.Register(e, &httpserver.Deps{
		DB:           gdb,
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc},
		MenuHandler:  &httpserver.MenuHTTP{Svc: menuSvc},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: events}},
		JWTSecret:    cfg.JWTAccessSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("menushare listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("menushare stopped")
	return nil
}
