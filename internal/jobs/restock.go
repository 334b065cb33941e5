package jobs

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// LowStockRestock запускает мутацию пополнения склада и пишет в лог-файл
// имя и новый остаток каждого обновлённого товара.
type LowStockRestock struct {
	client APIClient
	sink   *LogSink
	logger *log.Entry
	now    func() time.Time
}

// RestockOption настраивает LowStockRestock.
type RestockOption func(*LowStockRestock)

// WithRestockClock подменяет источник времени.
func WithRestockClock(now func() time.Time) RestockOption {
	return func(j *LowStockRestock) {
		if now != nil {
			j.now = now
		}
	}
}

// WithRestockLogger задаёт логгер.
func WithRestockLogger(logger *log.Entry) RestockOption {
	return func(j *LowStockRestock) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// NewLowStockRestock конструирует джобу пополнения склада.
func NewLowStockRestock(client APIClient, sink *LogSink, opts ...RestockOption) *LowStockRestock {
	j := &LowStockRestock{
		client: client,
		sink:   sink,
		logger: log.WithField("component", "restock-job"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *LowStockRestock) Name() string { return "low-stock-restock" }

// Run выполняет пополнение и фиксирует обновлённые товары.
// Ошибка мутации тоже дописывается в файл, а не роняет джобу.
func (j *LowStockRestock) Run(ctx context.Context) error {
	timestamp := j.now().Format(logTimeLayout)

	var reply struct {
		Products []struct {
			Name  string `json:"name"`
			Stock int32  `json:"stock"`
		} `json:"products"`
		Message string `json:"message"`
	}
	if err := j.client.Do(ctx, "restockLowStock", nil, &reply); err != nil {
		if sinkErr := j.sink.Appendf("%s - ERROR restocking products: %v", timestamp, err); sinkErr != nil {
			return sinkErr
		}
		return fmt.Errorf("restock low stock products: %w", err)
	}
	for _, product := range reply.Products {
		line := fmt.Sprintf("%s - Restocked %s: new stock %d", timestamp, product.Name, product.Stock)
		if err := j.sink.Append(line); err != nil {
			return err
		}
	}
	if err := j.sink.Appendf("%s - %s", timestamp, reply.Message); err != nil {
		return err
	}

	j.logger.WithField("products", len(reply.Products)).Info("low stock products restocked")
	return nil
}
