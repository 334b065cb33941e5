// Package seed наполняет CRM демонстрационными данными: клиенты,
// товары и заказы с правдоподобными значениями.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/service/crm"
)

// Config — объёмы генерации.
type Config struct {
	Customers int
	Products  int
	Orders    int
}

// DefaultConfig — объёмы по умолчанию.
func DefaultConfig() Config {
	return Config{Customers: 10, Products: 20, Orders: 30}
}

// Result — фактически созданные записи.
type Result struct {
	Customers int
	Products  int
	Orders    int
}

// Seeder создаёт данные через CRM-сервис, так что на сгенерированные
// записи действуют те же правила валидации, что и на обычные запросы.
type Seeder struct {
	svc    *crm.Service
	faker  *gofakeit.Faker
	logger *log.Entry
	now    func() time.Time
}

// Option настраивает Seeder.
type Option func(*Seeder)

// WithFaker подменяет генератор (для воспроизводимых прогонов задайте seed).
func WithFaker(faker *gofakeit.Faker) Option {
	return func(s *Seeder) {
		if faker != nil {
			s.faker = faker
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) {
		if now != nil {
			s.now = now
		}
	}
}

// New конструирует Seeder поверх CRM-сервиса.
func New(svc *crm.Service, opts ...Option) *Seeder {
	s := &Seeder{
		svc:    svc,
		faker:  gofakeit.New(0),
		logger: log.WithField("component", "seeder"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run генерирует cfg.Customers клиентов, cfg.Products товаров и
// cfg.Orders заказов. Отдельные неудачи логируются и пропускаются.
func (s *Seeder) Run(cfg Config) (Result, error) {
	var result Result

	customerIDs := make([]string, 0, cfg.Customers)
	for i := 0; i < cfg.Customers; i++ {
		input := crm.CustomerInput{
			Name: s.faker.Name(),
			// Суффикс с индексом исключает коллизии email между прогонами faker.
			Email: s.uniqueEmail(i),
			Phone: s.faker.Numerify("###-###-####"),
		}
		created, err := s.svc.CreateCustomer(input)
		if err != nil {
			return result, fmt.Errorf("seed customer: %w", err)
		}
		if len(created.Errors) > 0 {
			s.logger.WithField("errors", created.Errors).Warn("skipped generated customer")
			continue
		}
		customerIDs = append(customerIDs, created.Customer.ID)
		result.Customers++
	}

	productIDs := make([]string, 0, cfg.Products)
	for i := 0; i < cfg.Products; i++ {
		input := crm.ProductInput{
			Name:  s.faker.ProductName(),
			Price: decimal.NewFromFloat(s.faker.Price(10, 2000)).Round(2),
			Stock: int32(s.faker.Number(0, 50)),
		}
		created, err := s.svc.CreateProduct(input)
		if err != nil {
			return result, fmt.Errorf("seed product: %w", err)
		}
		if len(created.Errors) > 0 {
			s.logger.WithField("errors", created.Errors).Warn("skipped generated product")
			continue
		}
		productIDs = append(productIDs, created.Product.ID)
		result.Products++
	}

	if len(customerIDs) == 0 || len(productIDs) == 0 {
		return result, nil
	}

	for i := 0; i < cfg.Orders; i++ {
		orderDate := s.now().Add(-time.Duration(s.faker.Number(0, 365*24)) * time.Hour)
		input := crm.OrderInput{
			CustomerID: customerIDs[s.faker.Number(0, len(customerIDs)-1)],
			ProductIDs: s.pickProducts(productIDs),
			OrderDate:  &orderDate,
		}
		created, err := s.svc.CreateOrder(input)
		if err != nil {
			return result, fmt.Errorf("seed order: %w", err)
		}
		if len(created.Errors) > 0 {
			s.logger.WithField("errors", created.Errors).Warn("skipped generated order")
			continue
		}
		result.Orders++
	}

	return result, nil
}

func (s *Seeder) uniqueEmail(i int) string {
	local := strings.ToLower(s.faker.Username())
	return fmt.Sprintf("%s.%d@%s", local, i, s.faker.DomainName())
}

// pickProducts выбирает от 1 до 5 различных товаров.
func (s *Seeder) pickProducts(productIDs []string) []string {
	count := s.faker.Number(1, 5)
	if count > len(productIDs) {
		count = len(productIDs)
	}

	picked := make([]string, len(productIDs))
	copy(picked, productIDs)
	s.faker.ShuffleStrings(picked)
	return picked[:count]
}
