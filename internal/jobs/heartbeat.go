package jobs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Heartbeat пишет строку "CRM is alive" в лог-файл и проверяет
// доступность API через операцию hello. Недоступность API не считается
// ошибкой джобы: факт проверки фиксируется в том же файле.
type Heartbeat struct {
	client APIClient
	sink   *LogSink
	logger *log.Entry
	now    func() time.Time
}

// HeartbeatOption настраивает Heartbeat.
type HeartbeatOption func(*Heartbeat)

// WithHeartbeatClock подменяет источник времени.
func WithHeartbeatClock(now func() time.Time) HeartbeatOption {
	return func(j *Heartbeat) {
		if now != nil {
			j.now = now
		}
	}
}

// WithHeartbeatLogger задаёт логгер.
func WithHeartbeatLogger(logger *log.Entry) HeartbeatOption {
	return func(j *Heartbeat) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// NewHeartbeat конструирует heartbeat-джобу.
func NewHeartbeat(client APIClient, sink *LogSink, opts ...HeartbeatOption) *Heartbeat {
	j := &Heartbeat{
		client: client,
		sink:   sink,
		logger: log.WithField("component", "heartbeat-job"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Heartbeat) Name() string { return "heartbeat" }

// Run пишет heartbeat-строку и результат hello-проверки.
func (j *Heartbeat) Run(ctx context.Context) error {
	timestamp := j.now().Format(heartbeatTimeLayout)

	if err := j.sink.Appendf("%s CRM is alive", timestamp); err != nil {
		return err
	}

	var reply struct {
		Hello string `json:"hello"`
	}
	if err := j.client.Do(ctx, "hello", nil, &reply); err != nil {
		j.logger.WithError(err).Warn("hello check failed")
		return j.sink.Appendf("%s GraphQL check failed: %v", timestamp, err)
	}

	return j.sink.Appendf("%s GraphQL hello response: %s", timestamp, reply.Hello)
}
