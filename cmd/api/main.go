package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/marketdesk/server/internal/bootstrap"
	"github.com/marketdesk/server/internal/http/handlers"
	httpapi "github.com/marketdesk/server/internal/http/httpapi"
	"github.com/marketdesk/server/internal/infra"
	"github.com/marketdesk/server/internal/infra/geoip"
	"github.com/marketdesk/server/internal/middleware"
	"github.com/marketdesk/server/internal/notice"
	"github.com/marketdesk/server/internal/quota"
)

func main() {
	infra.LoadDotEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	stores, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open stores")
	}
	defer stores.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := quota.NewMetrics(registry)

	factory := quota.NewFactory(stores.Counters, stores.Local, bootstrap.QuotaOptions(cfg, logger, metrics))
	app := handlers.NewApp(factory, notice.NewCatalog(), registry, logger)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		DefaultLocale:      "en",
		CountryLookup:      resolver.Lookup(),
		Tokens:             middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("counter_store", cfg.CounterStore).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
