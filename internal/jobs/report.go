package jobs

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// CRMReport собирает агрегаты по CRM и дописывает строку отчёта в лог-файл.
// Ошибка сбора тоже фиксируется в файле, чтобы в отчёте были видны провалы.
type CRMReport struct {
	client APIClient
	sink   *LogSink
	logger *log.Entry
	now    func() time.Time
}

// ReportOption настраивает CRMReport.
type ReportOption func(*CRMReport)

// WithReportClock подменяет источник времени.
func WithReportClock(now func() time.Time) ReportOption {
	return func(j *CRMReport) {
		if now != nil {
			j.now = now
		}
	}
}

// WithReportLogger задаёт логгер.
func WithReportLogger(logger *log.Entry) ReportOption {
	return func(j *CRMReport) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// NewCRMReport конструирует джобу отчёта.
func NewCRMReport(client APIClient, sink *LogSink, opts ...ReportOption) *CRMReport {
	j := &CRMReport{
		client: client,
		sink:   sink,
		logger: log.WithField("component", "report-job"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *CRMReport) Name() string { return "crm-report" }

// Run собирает сводку и пишет строку отчёта.
func (j *CRMReport) Run(ctx context.Context) error {
	var reply struct {
		TotalCustomers int64           `json:"totalCustomers"`
		TotalOrders    int64           `json:"totalOrders"`
		TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	}
	timestamp := j.now().Format(logTimeLayout)

	if err := j.client.Do(ctx, "summary", nil, &reply); err != nil {
		if sinkErr := j.sink.Appendf("%s - ERROR generating report: %v", timestamp, err); sinkErr != nil {
			return sinkErr
		}
		return err
	}

	return j.sink.Appendf(
		"%s - Report: %d customers, %d orders, %s revenue",
		timestamp, reply.TotalCustomers, reply.TotalOrders, reply.TotalRevenue.String(),
	)
}
