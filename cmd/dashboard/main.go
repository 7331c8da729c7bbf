// Package main is the entrypoint for the news dashboard server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/newsdash/internal/api"
	"github.com/kiranshivaraju/newsdash/internal/api/handler"
	mw "github.com/kiranshivaraju/newsdash/internal/api/middleware"
	"github.com/kiranshivaraju/newsdash/internal/api/response"
	"github.com/kiranshivaraju/newsdash/internal/cache"
	"github.com/kiranshivaraju/newsdash/internal/config"
	"github.com/kiranshivaraju/newsdash/internal/dashboard"
	"github.com/kiranshivaraju/newsdash/internal/gateway"
	"github.com/kiranshivaraju/newsdash/internal/jobmon"
	"github.com/kiranshivaraju/newsdash/internal/refresh"
	"github.com/kiranshivaraju/newsdash/internal/schedule"
	"github.com/kiranshivaraju/newsdash/internal/view"
	"github.com/kiranshivaraju/newsdash/pkg/query"
)

const shutdownTimeout = 30 * time.Second

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(level); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(level *slog.LevelVar) error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level.Set(cfg.Server.LogLevel)
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"backend", cfg.Backend.BaseURL,
		"timezone", cfg.Page.Location().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Optional Redis for rate limiting
	var redisCache *cache.RedisCache
	if cfg.Redis.URL != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")
	}

	// 3. Wire the dashboard
	controller, monitor := buildDashboard(cfg)
	defer monitor.Stop()

	controller.Refresh(ctx)
	slog.Info("initial page loaded")

	// 4. Build router with dependencies
	deps := api.Dependencies{
		HealthHandler:   healthHandler(optionalCache(redisCache)),
		StateHandler:    handler.NewStateHandler(controller),
		RefreshHandler:  handler.NewRefreshHandler(controller),
		CategoryHandler: handler.NewCategoryHandler(controller),
		DateHandler:     handler.NewDateHandler(controller),
		ScoreHandler:    handler.NewScoreHandler(controller),
		SortHandler:     handler.NewSortHandler(controller),
		TrustHandler:    handler.NewTrustHandler(controller),
		NextPageHandler: handler.NewNextPageHandler(controller),
		PrevPageHandler: handler.NewPrevPageHandler(controller),
		CollectHandler:  handler.NewCollectHandler(controller),
		ClipHandler:     handler.NewClipHandler(controller),
		UnclipHandler:   handler.NewUnclipHandler(controller),
		ClipsHandler:    handler.NewClipsHandler(controller),
		SearchHandler:   handler.NewSearchHandler(controller),
	}
	if cfg.Auth.PasswordHash != "" {
		deps.Auth = mw.NewAuth(cfg.Auth.PasswordHash)
	}
	if redisCache != nil {
		deps.RateLimit = mw.NewRateLimit(redisCache, cfg.Redis.RateLimitPerMin)
	}

	router := api.NewRouter(deps)

	// 5. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// buildDashboard assembles the controller and its collection monitor.
func buildDashboard(cfg *config.Config) (*dashboard.Controller, *jobmon.Monitor) {
	gw := gateway.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, cfg.Backend.Timeout)

	composer := query.NewComposer(cfg.Page.Categories, cfg.Page.SortKeys,
		query.WithPerPage(cfg.Page.PerPage),
		query.WithLocation(cfg.Page.Location()),
	)
	page := view.NewState()
	coordinator := refresh.NewCoordinator(gw, composer, page)

	jobCfg := jobmon.Config{
		PollInterval:         cfg.Jobs.PollInterval,
		RefreshDelay:         cfg.Jobs.RefreshDelay,
		RevertDelay:          cfg.Jobs.RevertDelay,
		CommErrorRevertDelay: cfg.Jobs.CommErrorRevertDelay,
		IdleLabel:            cfg.Page.TriggerLabel,
	}
	monitor := jobmon.NewMonitor(gw, coordinator, page, schedule.NewClock(), jobCfg)

	return dashboard.NewController(composer, coordinator, monitor, gw, gw, page), monitor
}

// optionalCache avoids handing healthHandler a typed nil.
func optionalCache(rc *cache.RedisCache) cache.Cache {
	if rc == nil {
		return nil
	}
	return rc
}

// healthHandler reports cache connectivity. Without Redis the cache is
// reported as disabled and the service is still healthy.
func healthHandler(c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"cache": "disabled"}

		if c != nil {
			checks["cache"] = "ok"
			if err := c.Ping(r.Context()); err != nil {
				checks["cache"] = "degraded"
				response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
					"One or more services degraded", checks)
				return
			}
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
