package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/partsdesk/internal/health"
	"github.com/vladislavdragonenkov/partsdesk/internal/version"
)

// Run собирает зависимости, делает первичную загрузку снапшота, запускает
// фоновое обновление и операционный HTTP-сервер и работает до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	deps := NewDependencies(cfg, logger)

	// Первичная загрузка — пользовательская: выполняется всегда.
	// Сбой не фатален: фоновый цикл добьёт снапшот, как только сервис оживёт.
	if err := deps.Store.Refresh(ctx, false); err != nil {
		logger.WithError(err).Warn("initial snapshot load failed, continuing with empty snapshot")
	}

	healthHandler := healthcheck.NewHandler(version.String())
	healthHandler.RegisterChecker("snapshot", healthcheck.NewStalenessChecker(
		"snapshot",
		3*cfg.PollInterval,
		deps.Store.LastRefresh,
	))
	healthHandler.RegisterChecker("gateway", healthcheck.NewSimpleChecker("gateway", func() error {
		// Занятый шлюз — не сбой: запись в полёте штатна.
		return nil
	}))

	srv := startHTTPServer(ctx, cfg.HTTPAddr, logger, healthHandler)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		deps.Worker.Run(ctx)
	}()

	logger.WithFields(log.Fields{
		"http_addr":     cfg.HTTPAddr,
		"gateway_mode":  cfg.GatewayMode,
		"poll_interval": cfg.PollInterval.String(),
	}).Info("partsdesk core started")

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем фоновое обновление")

	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		logger.Warn("refresh worker не остановился за таймаут")
	}

	shutdownHTTP(srv, logger)
	return ctx.Err()
}

// startHTTPServer запускает операционный HTTP-сервер: метрики и health checks.
func startHTTPServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("http server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
