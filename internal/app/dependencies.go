package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
	"github.com/vladislavdragonenkov/crm/internal/storage/postgres"
)

// Dependencies содержит хранилища приложения.
type Dependencies struct {
	Customers domain.CustomerRepository
	Products  domain.ProductRepository
	Orders    domain.OrderRepository
	Outbox    domain.OutboxRepository
	// Store не nil только для postgres-хранилища.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies выбирает хранилище: postgres при заданном DSN, иначе
// in-memory. Для postgres схема приводится к актуальной версии.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN не задан, используем in-memory хранилище")
		customers := memory.NewCustomerRepository()
		products := memory.NewProductRepository()
		return &Dependencies{
			Customers: customers,
			Products:  products,
			Orders:    memory.NewOrderRepository(customers, products),
			Outbox:    memory.NewOutboxRepository(),
			Logger:    logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("postgres хранилище инициализировано")

	return &Dependencies{
		Customers: postgres.NewCustomerRepository(store),
		Products:  postgres.NewProductRepository(store),
		Orders:    postgres.NewOrderRepository(store),
		Outbox:    postgres.NewOutboxRepository(store),
		Store:     store,
		Logger:    logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
