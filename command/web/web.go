package web

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pr-dashboard/connectors/chart"
	"pr-dashboard/connectors/config"
	ccsv "pr-dashboard/connectors/csv"
	"pr-dashboard/connectors/session"
)

// Run starts the Echo web server serving the dashboard and its JSON API.
//
// Usage:
//
//	pr-dashboard web [-addr :8080] [-data data/pr_data.csv]
//
// Endpoints:
//
//	GET  /login, POST /login, POST /logout
//	GET  /                  -> dashboard page
//	GET  /api/dashboard     -> full snapshot
//	GET  /api/charts        -> chart board (four charts with revisions)
//	GET  /api/table         -> table rows, titles sanitized
//	GET  /api/session       -> login flags of the caller
//	PUT  /api/range         -> {"start":"2024-01-01","end":"2024-01-31"}
//	PUT  /api/view          -> {"view":"daily"}
//	POST /api/reload        -> refetch the CSV
//
// A failed initial load does not stop the server: dashboard endpoints answer
// 503 with the failure so the browser can show the notice.
func Run(args []string) error {
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		return err
	}
	slog.SetDefault(config.Logger(cfg, os.Stderr))

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Server.Addr, "http listen address (host:port)")
	source := fs.String("data", cfg.Data.Source, "path or http(s) URL of the PR CSV")
	quoted := fs.Bool("quoted", cfg.Data.Quoted, "parse the CSV with RFC 4180 quoting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := chart.NewBoard()
	dash := NewDashboard(ccsv.NewLoader(*source, cfg.Data.Token, *quoted), board, loc, cfg.Data.TopContributors, cfg.Data.WindowDays)
	if err := dash.Load(ctx); err != nil {
		slog.Error("web.initial_load.error", "source", *source, "error", err)
	}

	sessions := session.NewStore(cfg.Auth.Username, cfg.Auth.Password)
	e := NewServer(dash, board, sessions)

	go func() {
		slog.Info("web.start", "addr", *addr, "source", *source)
		if err := e.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("web.serve.error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("web.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// NewServer wires routes and middleware onto a fresh Echo instance.
func NewServer(dash *Dashboard, board *chart.Board, sessions *session.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				slog.Warn("http.request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			slog.Info("http.request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	h := &handler{dash: dash, board: board, sessions: sessions}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/login", h.loginPage)
	e.POST("/login", h.login)
	e.POST("/logout", h.logout)

	e.GET("/", h.page, h.requireSession(false))

	api := e.Group("/api", h.requireSession(true))
	api.GET("/dashboard", h.snapshot)
	api.GET("/charts", h.charts)
	api.GET("/table", h.table)
	api.GET("/session", h.session)
	api.PUT("/range", h.setRange)
	api.PUT("/view", h.setView)
	api.POST("/reload", h.reload)

	return e
}
