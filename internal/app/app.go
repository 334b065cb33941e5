// Package app собирает CRM-сервис: хранилище, Kafka, HTTP API и
// операционные эндпоинты, и управляет их жизненным циклом.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/crm/internal/health"
	"github.com/vladislavdragonenkov/crm/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/crm/internal/metrics"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
	"github.com/vladislavdragonenkov/crm/internal/service/httpapi"
	"github.com/vladislavdragonenkov/crm/internal/service/outbox"
	"github.com/vladislavdragonenkov/crm/internal/version"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	PostgresDSN string
	// KafkaBrokers пуст — события не публикуются.
	KafkaBrokers []string
}

// DefaultConfig возвращает базовые адреса API и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8000",
		MetricsAddr: ":9090",
	}
}

// Run запускает приложение и блокируется до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	// Kafka и outbox worker опциональны: без брокеров события копятся
	// в outbox, но не публикуются.
	var kafkaProducer *kafka.Producer
	var outboxWorker *outbox.Worker

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")

			publisher := kafka.NewOutboxPublisher(producer, kafka.TopicCRMEvents)
			outboxWorker = outbox.NewWorker(deps.Outbox, publisher,
				outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			)
		}
	}

	svc := crm.NewService(deps.Customers, deps.Products, deps.Orders, deps.Outbox, logger.WithField("layer", "service"))
	apiMetrics := metrics.NewAPIMetrics()
	handler := httpapi.NewHandler(svc, apiMetrics, logger.WithField("layer", "httpapi"))

	apiMux := http.NewServeMux()
	handler.Register(apiMux)
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiMux}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		healthHandler.RegisterChecker("storage", healthcheck.NewPingChecker("storage", 2*time.Second, deps.Store.Ping))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	if outboxWorker != nil {
		go outboxWorker.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("CRM API слушает %s%s", cfg.HTTPAddr, httpapi.Path)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		closeProducer(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeProducer(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ParseBrokers разбирает список брокеров из строки с запятыми.
func ParseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
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

func closeProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
