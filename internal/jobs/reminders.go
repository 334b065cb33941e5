package jobs

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const reminderWindow = 7 * 24 * time.Hour

// OrderReminders выбирает заказы за последнюю неделю и пишет по строке
// на каждый заказ в лог-файл напоминаний.
type OrderReminders struct {
	client APIClient
	sink   *LogSink
	logger *log.Entry
	now    func() time.Time
}

// RemindersOption настраивает OrderReminders.
type RemindersOption func(*OrderReminders)

// WithRemindersClock подменяет источник времени.
func WithRemindersClock(now func() time.Time) RemindersOption {
	return func(j *OrderReminders) {
		if now != nil {
			j.now = now
		}
	}
}

// WithRemindersLogger задаёт логгер.
func WithRemindersLogger(logger *log.Entry) RemindersOption {
	return func(j *OrderReminders) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// NewOrderReminders конструирует джобу напоминаний.
func NewOrderReminders(client APIClient, sink *LogSink, opts ...RemindersOption) *OrderReminders {
	j := &OrderReminders{
		client: client,
		sink:   sink,
		logger: log.WithField("component", "reminders-job"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *OrderReminders) Name() string { return "order-reminders" }

// Run запрашивает недельные заказы и фиксирует напоминания.
// Ошибка запроса тоже дописывается в файл, а не роняет джобу.
func (j *OrderReminders) Run(ctx context.Context) error {
	cutoff := j.now().Add(-reminderWindow)
	timestamp := j.now().Format(logTimeLayout)

	var reply struct {
		Orders []struct {
			ID       string `json:"id"`
			Customer struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"orders"`
	}
	vars := map[string]any{"orderDateGte": cutoff.Format(time.RFC3339)}
	if err := j.client.Do(ctx, "orders", vars, &reply); err != nil {
		if sinkErr := j.sink.Appendf("%s - ERROR fetching recent orders: %v", timestamp, err); sinkErr != nil {
			return sinkErr
		}
		return fmt.Errorf("fetch recent orders: %w", err)
	}
	for _, order := range reply.Orders {
		line := fmt.Sprintf("%s - Order ID: %s, Customer Email: %s", timestamp, order.ID, order.Customer.Email)
		if err := j.sink.Append(line); err != nil {
			return err
		}
	}

	j.logger.WithField("orders", len(reply.Orders)).Info("Order reminders processed!")
	return nil
}
