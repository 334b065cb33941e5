package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

// Пути лог-файлов джоб.
const (
	HeartbeatLogPath = "/tmp/crm_heartbeat_log.txt"
	RemindersLogPath = "/tmp/order_reminders_log.txt"
	RestockLogPath   = "/tmp/low_stock_updates_log.txt"
	ReportLogPath    = "/tmp/crm_report_log.txt"
)

// Форматы меток времени в лог-файлах.
const (
	heartbeatTimeLayout = "02/01/2006-15:04:05"
	logTimeLayout       = "2006-01-02 15:04:05"
)

var jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crm_job_runs_total",
	Help: "Количество запусков фоновых джоб по имени и результату.",
}, []string{"job", "result"})

// Job — одна фоновая задача CRM.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// APIClient — то, что джобам нужно от HTTP-клиента CRM.
type APIClient interface {
	Do(ctx context.Context, operation string, variables any, out any) error
}

// RunJob выполняет задачу, логирует исход и обновляет счётчик запусков.
func RunJob(ctx context.Context, job Job, logger *log.Entry) error {
	if logger == nil {
		logger = log.WithField("component", "jobs")
	}
	logger = logger.WithField("job", job.Name())

	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		jobRunsTotal.WithLabelValues(job.Name(), "error").Inc()
		logger.WithError(err).WithField("duration", time.Since(start)).Error("job failed")
		return err
	}

	jobRunsTotal.WithLabelValues(job.Name(), "ok").Inc()
	logger.WithField("duration", time.Since(start)).Info("job finished")
	return nil
}
