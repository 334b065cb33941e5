package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/apiclient"
	"github.com/vladislavdragonenkov/crm/internal/jobs"
)

const defaultAPIURL = "http://localhost:8000"

// Расписания фоновых джоб в формате cron.
const (
	heartbeatSpec = "*/5 * * * *"
	restockSpec   = "0 */12 * * *"
	remindersSpec = "0 8 * * *"
	reportSpec    = "0 6 * * 1"
)

func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

func main() {
	setupLogger()

	var (
		apiURL   string
		jobName  string
		schedule bool
	)
	flag.StringVar(&apiURL, "api", "", "CRM API base URL (fallback: CRM_API_URL, default "+defaultAPIURL+")")
	flag.StringVar(&jobName, "job", "", "run a single job: heartbeat|restock|reminders|report")
	flag.BoolVar(&schedule, "schedule", false, "run all jobs on their cron schedules")
	flag.Parse()

	if apiURL == "" {
		apiURL = os.Getenv("CRM_API_URL")
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	logger := log.WithField("component", "crm-jobs")
	client := apiclient.New(apiURL, apiclient.WithLogger(logger.WithField("component", "apiclient")))

	registry := map[string]jobs.Job{
		"heartbeat": jobs.NewHeartbeat(client, jobs.NewLogSink(jobs.HeartbeatLogPath)),
		"restock":   jobs.NewLowStockRestock(client, jobs.NewLogSink(jobs.RestockLogPath)),
		"reminders": jobs.NewOrderReminders(client, jobs.NewLogSink(jobs.RemindersLogPath)),
		"report":    jobs.NewCRMReport(client, jobs.NewLogSink(jobs.ReportLogPath)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case schedule:
		runScheduler(ctx, registry, logger)
	case jobName != "":
		job, ok := registry[strings.ToLower(strings.TrimSpace(jobName))]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown job: %s (use heartbeat|restock|reminders|report)\n", jobName)
			os.Exit(1)
		}
		// Сбой джобы уже записан в её лог-файл и метрики; для планировщика
		// запуск считается состоявшимся, поэтому выходим с нулевым кодом.
		_ = jobs.RunJob(ctx, job, logger)
	default:
		fmt.Fprintln(os.Stderr, "specify -job <name> or -schedule")
		os.Exit(1)
	}
}

// runScheduler запускает все джобы по их расписаниям и блокируется до сигнала.
func runScheduler(ctx context.Context, registry map[string]jobs.Job, logger *log.Entry) {
	specs := map[string]string{
		"heartbeat": heartbeatSpec,
		"restock":   restockSpec,
		"reminders": remindersSpec,
		"report":    reportSpec,
	}

	scheduler := cron.New()
	for name, spec := range specs {
		job := registry[name]
		if _, err := scheduler.AddFunc(spec, func() {
			_ = jobs.RunJob(ctx, job, logger)
		}); err != nil {
			logger.WithError(err).WithField("job", name).Fatal("failed to schedule job")
		}
		logger.WithFields(log.Fields{"job": name, "spec": spec}).Info("job scheduled")
	}

	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped")
}
