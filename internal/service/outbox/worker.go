package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

const (
	defaultPollInterval = 1 * time.Second
	defaultBatchSize    = 100
	defaultMaxAttempts  = 3
	defaultRetryDelay   = 50 * time.Millisecond
)

var (
	publishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_outbox_publish_attempts_total",
		Help: "Total number of outbox publish attempts grouped by result.",
	}, []string{"result"})
	backlogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crm_outbox_pending_records",
		Help: "Current number of pending records in transactional outbox.",
	})
	backlogOldestAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crm_outbox_oldest_pending_age_seconds",
		Help: "Age in seconds of the oldest pending outbox record.",
	})
)

// Worker вычитывает pending-события из outbox и доставляет их паблишеру.
// Событие помечается sent только после успешной публикации, поэтому при
// сбое брокера оно будет доставлено повторно (at-least-once).
type Worker struct {
	repo       domain.OutboxRepository
	publisher  domain.OutboxPublisher
	logger     *log.Entry
	poll       time.Duration
	batchSize  int
	attempts   int
	retryDelay time.Duration
}

// Option настраивает Worker.
type Option func(*Worker)

// WithLogger задаёт logger воркера.
func WithLogger(logger *log.Entry) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithPollInterval задаёт период опроса outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.poll = interval
		}
	}
}

// WithBatchSize задаёт максимум событий за один цикл.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithMaxAttempts задаёт число попыток публикации до пометки failed.
func WithMaxAttempts(attempts int) Option {
	return func(w *Worker) {
		if attempts > 0 {
			w.attempts = attempts
		}
	}
}

// WithRetryBaseDelay задаёт базовую задержку между попытками.
// Нулевое значение отключает паузы (используется в тестах).
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(w *Worker) {
		if delay >= 0 {
			w.retryDelay = delay
		}
	}
}

// NewWorker создаёт воркер публикации outbox-событий.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...Option) *Worker {
	w := &Worker{
		repo:       repo,
		publisher:  publisher,
		logger:     log.WithField("component", "outbox-worker"),
		poll:       defaultPollInterval,
		batchSize:  defaultBatchSize,
		attempts:   defaultMaxAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// Run крутит polling-цикл до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return
	}

	w.ProcessOnce(ctx)

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce вычитывает один батч pending-событий и доставляет каждое.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.observeBacklog()

	batch, err := w.repo.PullPending(w.batchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return
	}

	for _, msg := range batch {
		if ctx.Err() != nil {
			return
		}
		w.handle(ctx, msg)
	}

	if len(batch) > 0 {
		w.observeBacklog()
	}
}

func (w *Worker) handle(ctx context.Context, msg domain.OutboxMessage) {
	if err := w.deliver(ctx, msg); err != nil {
		publishAttempts.WithLabelValues("failed").Inc()
		w.logger.WithError(err).WithFields(log.Fields{
			"outbox_id":  msg.ID,
			"event_type": msg.EventType,
		}).Error("outbox publish failed after retries")

		if markErr := w.repo.MarkFailed(msg.ID); markErr != nil {
			w.logger.WithError(markErr).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as failed")
		}
		return
	}

	if err := w.repo.MarkSent(msg.ID); err != nil {
		w.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as sent")
	}
}

// deliver публикует событие с ограниченным числом попыток и exponential backoff.
func (w *Worker) deliver(ctx context.Context, msg domain.OutboxMessage) error {
	var lastErr error
	for attempt := 0; attempt < w.attempts; attempt++ {
		if attempt > 0 && w.retryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.retryDelay << (attempt - 1)):
			}
		}

		if lastErr = w.publisher.Publish(msg); lastErr == nil {
			publishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		publishAttempts.WithLabelValues("retry_error").Inc()
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.attempts, lastErr)
}

func (w *Worker) observeBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}

	backlogSize.Set(float64(stats.PendingCount))

	age := 0.0
	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		if since := time.Since(stats.OldestPendingAt).Seconds(); since > 0 {
			age = since
		}
	}
	backlogOldestAge.Set(age)
}
