package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/messaging/kafka"
)

const (
	msgCustomerCreated = "Customer created successfully"
	msgCustomerFailed  = "Customer creation failed"
	msgRestockDone     = "Low stock products updated successfully"
)

var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crm_mutations_total",
	Help: "Total number of CRM mutations grouped by operation and result.",
}, []string{"operation", "result"})

// CustomerInput — входные данные мутации создания клиента.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// ProductInput — входные данные мутации создания товара.
type ProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int32
}

// OrderInput — входные данные мутации создания заказа.
type OrderInput struct {
	CustomerID string
	ProductIDs []string
	// OrderDate опциональна; по умолчанию момент создания.
	OrderDate *time.Time
}

// CustomerResult — результат CreateCustomer. Бизнес-ошибки лежат в Errors,
// а не возвращаются как error: вызывающий всегда получает структурный ответ.
type CustomerResult struct {
	Customer *domain.Customer
	Message  string
	Errors   []string
}

// BulkCustomersResult — результат BulkCreateCustomers с по-строчными ошибками.
type BulkCustomersResult struct {
	Customers []domain.Customer
	Errors    []string
}

// ProductResult — результат CreateProduct.
type ProductResult struct {
	Product *domain.Product
	Errors  []string
}

// OrderResult — результат CreateOrder.
type OrderResult struct {
	Order  *domain.Order
	Errors []string
}

// RestockResult — результат RestockLowStock.
type RestockResult struct {
	Products []domain.Product
	Message  string
}

// Summary — агрегаты по всей CRM.
type Summary struct {
	TotalCustomers int64
	TotalOrders    int64
	TotalRevenue   decimal.Decimal
}

// Service реализует операции CRM поверх доменных репозиториев.
type Service struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	// outbox опционален: без него события просто не публикуются.
	outbox domain.OutboxRepository
	logger *log.Entry
}

// NewService конструирует сервис с зависимостями.
func NewService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "crm-service")
	}
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    outbox,
		logger:    logger,
	}
}

// CreateCustomer создаёт клиента, собрав все нарушения валидации разом.
// При любом нарушении ничего не сохраняется.
func (s *Service) CreateCustomer(input CustomerInput) (CustomerResult, error) {
	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: time.Now().UTC(),
	}

	errs := customer.ValidateFields()

	// Предварительная проверка уникальности даёт дружелюбное сообщение;
	// от гонки защищает unique-индекс при Create.
	if customer.Email != "" {
		exists, err := s.customers.ExistsByEmail(customer.Email)
		if err != nil {
			mutationsTotal.WithLabelValues("create_customer", "error").Inc()
			return CustomerResult{}, fmt.Errorf("check email uniqueness: %w", err)
		}
		if exists {
			errs = append(errs, domain.MsgEmailExists)
		}
	}

	if len(errs) > 0 {
		mutationsTotal.WithLabelValues("create_customer", "rejected").Inc()
		return CustomerResult{Message: msgCustomerFailed, Errors: errs}, nil
	}

	if err := s.customers.Create(customer); err != nil {
		// Конфликт уникальности на создании клиента — всегда занятый email.
		if domain.IsConflict(err) {
			mutationsTotal.WithLabelValues("create_customer", "rejected").Inc()
			return CustomerResult{Message: msgCustomerFailed, Errors: []string{domain.MsgEmailExists}}, nil
		}
		mutationsTotal.WithLabelValues("create_customer", "error").Inc()
		return CustomerResult{}, fmt.Errorf("create customer: %w", err)
	}

	s.enqueueEvent("customer", customer.ID, string(kafka.EventTypeCustomerCreated), kafka.CustomerEvent{
		EventType:  kafka.EventTypeCustomerCreated,
		CustomerID: customer.ID,
		Email:      customer.Email,
		Timestamp:  customer.CreatedAt,
	})

	s.logger.WithFields(log.Fields{
		"customer_id": customer.ID,
		"email":       customer.Email,
	}).Info("customer created")
	mutationsTotal.WithLabelValues("create_customer", "ok").Inc()

	return CustomerResult{Customer: &customer, Message: msgCustomerCreated}, nil
}

// BulkCreateCustomers обрабатывает строки независимо: невалидная строка
// пропускается с записью ошибки, валидные сохраняются. Внешней транзакции
// на весь батч нет, поэтому поздняя ошибка не откатывает ранние успехи.
func (s *Service) BulkCreateCustomers(inputs []CustomerInput) (BulkCustomersResult, error) {
	result := BulkCustomersResult{
		Customers: make([]domain.Customer, 0, len(inputs)),
	}

	for _, input := range inputs {
		customer := domain.Customer{
			ID:        uuid.NewString(),
			Name:      input.Name,
			Email:     input.Email,
			Phone:     input.Phone,
			CreatedAt: time.Now().UTC(),
		}

		if input.Phone != "" && len(domain.ValidatePhone(input.Phone)) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid phone format: %s", input.Phone))
			continue
		}
		if fieldErrs := customer.ValidateFields(); len(fieldErrs) > 0 {
			result.Errors = append(result.Errors, fieldErrs...)
			continue
		}

		exists, err := s.customers.ExistsByEmail(customer.Email)
		if err != nil {
			mutationsTotal.WithLabelValues("bulk_create_customers", "error").Inc()
			return BulkCustomersResult{}, fmt.Errorf("check email uniqueness: %w", err)
		}
		if exists {
			result.Errors = append(result.Errors, fmt.Sprintf("Email already exists: %s", input.Email))
			continue
		}

		if err := s.customers.Create(customer); err != nil {
			if domain.IsConflict(err) {
				result.Errors = append(result.Errors, fmt.Sprintf("Email already exists: %s", input.Email))
				continue
			}
			// Прочие ошибки хранилища тоже по-строчные: батч продолжается.
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to create customer %s: %v", input.Email, err))
			continue
		}

		s.enqueueEvent("customer", customer.ID, string(kafka.EventTypeCustomerCreated), kafka.CustomerEvent{
			EventType:  kafka.EventTypeCustomerCreated,
			CustomerID: customer.ID,
			Email:      customer.Email,
			Timestamp:  customer.CreatedAt,
		})
		result.Customers = append(result.Customers, customer)
	}

	s.logger.WithFields(log.Fields{
		"created": len(result.Customers),
		"failed":  len(result.Errors),
	}).Info("bulk customer creation finished")
	mutationsTotal.WithLabelValues("bulk_create_customers", "ok").Inc()

	return result, nil
}

// CreateProduct создаёт товар, собрав все нарушения валидации разом.
func (s *Service) CreateProduct(input ProductInput) (ProductResult, error) {
	product := domain.Product{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Price:     input.Price,
		Stock:     input.Stock,
		CreatedAt: time.Now().UTC(),
	}

	if errs := product.ValidateFields(); len(errs) > 0 {
		mutationsTotal.WithLabelValues("create_product", "rejected").Inc()
		return ProductResult{Errors: errs}, nil
	}

	if err := s.products.Create(product); err != nil {
		mutationsTotal.WithLabelValues("create_product", "error").Inc()
		return ProductResult{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"price":      product.Price.String(),
	}).Info("product created")
	mutationsTotal.WithLabelValues("create_product", "ok").Inc()

	return ProductResult{Product: &product}, nil
}

// CreateOrder создаёт заказ. Каждый product ID разрешается независимо,
// ошибки накапливаются; при любой ошибке заказ не создаётся целиком —
// частично собранных заказов с молча выброшенными позициями не бывает.
// Сумма заказа фиксируется из текущих цен строго после разрешения всех товаров.
func (s *Service) CreateOrder(input OrderInput) (OrderResult, error) {
	var errs []string

	customer, err := s.customers.Get(input.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			mutationsTotal.WithLabelValues("create_order", "rejected").Inc()
			return OrderResult{Errors: []string{fmt.Sprintf("Invalid customer ID: %s", input.CustomerID)}}, nil
		}
		mutationsTotal.WithLabelValues("create_order", "error").Inc()
		return OrderResult{}, fmt.Errorf("resolve customer: %w", err)
	}

	ids := dedupe(input.ProductIDs)
	products, err := s.products.GetMany(ids)
	if err != nil {
		mutationsTotal.WithLabelValues("create_order", "error").Inc()
		return OrderResult{}, fmt.Errorf("resolve products: %w", err)
	}

	found := make(map[string]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			errs = append(errs, fmt.Sprintf("Invalid product ID: %s", id))
		}
	}
	if len(products) == 0 {
		errs = append(errs, "No valid products provided")
	}

	if len(errs) > 0 {
		mutationsTotal.WithLabelValues("create_order", "rejected").Inc()
		return OrderResult{Errors: errs}, nil
	}

	now := time.Now().UTC()
	orderDate := now
	if input.OrderDate != nil {
		orderDate = input.OrderDate.UTC()
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  customer.ID,
		Customer:    customer,
		Products:    products,
		TotalAmount: domain.TotalOf(products),
		OrderDate:   orderDate,
		CreatedAt:   now,
	}

	// Последний рубеж перед записью: собранный заказ обязан сходиться сам с собой.
	if violations := order.ValidateInvariants(); len(violations) > 0 {
		mutationsTotal.WithLabelValues("create_order", "error").Inc()
		return OrderResult{}, fmt.Errorf("order invariants violated: %s", strings.Join(violations, "; "))
	}

	if err := s.orders.Create(order); err != nil {
		mutationsTotal.WithLabelValues("create_order", "error").Inc()
		return OrderResult{}, fmt.Errorf("create order: %w", err)
	}

	s.enqueueEvent("order", order.ID, string(kafka.EventTypeOrderCreated), kafka.OrderEvent{
		EventType:   kafka.EventTypeOrderCreated,
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount.String(),
		ProductIDs:  ids,
		Timestamp:   now,
	})

	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"total_amount": order.TotalAmount.String(),
	}).Info("order created")
	mutationsTotal.WithLabelValues("create_order", "ok").Inc()

	return OrderResult{Order: &order}, nil
}

// RestockLowStock пополняет все товары со stock ниже порога на фиксированный
// инкремент. Отсутствие подходящих товаров — успех с пустым списком.
func (s *Service) RestockLowStock() (RestockResult, error) {
	updated, err := s.products.RestockBelow(domain.LowStockThreshold, domain.RestockIncrement)
	if err != nil {
		mutationsTotal.WithLabelValues("restock_low_stock", "error").Inc()
		return RestockResult{}, fmt.Errorf("restock low stock products: %w", err)
	}

	for _, product := range updated {
		s.enqueueEvent("product", product.ID, string(kafka.EventTypeProductRestock), kafka.RestockEvent{
			EventType: kafka.EventTypeProductRestock,
			ProductID: product.ID,
			Name:      product.Name,
			Stock:     product.Stock,
			Timestamp: time.Now().UTC(),
		})
	}

	s.logger.WithField("updated", len(updated)).Info("low stock restock finished")
	mutationsTotal.WithLabelValues("restock_low_stock", "ok").Inc()

	return RestockResult{Products: updated, Message: msgRestockDone}, nil
}

// ListCustomers возвращает клиентов по опциональным фильтрам.
func (s *Service) ListCustomers(filter domain.CustomerFilter) ([]domain.Customer, error) {
	return s.customers.List(filter)
}

// ListProducts возвращает товары по опциональным фильтрам.
func (s *Service) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.List(filter)
}

// ListOrders возвращает заказы с разрешёнными клиентом и товарами.
func (s *Service) ListOrders(filter domain.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(filter)
}

// Summarize возвращает счётчики клиентов и заказов и суммарную выручку.
func (s *Service) Summarize() (Summary, error) {
	customers, err := s.customers.Count()
	if err != nil {
		return Summary{}, fmt.Errorf("count customers: %w", err)
	}

	stats, err := s.orders.Stats()
	if err != nil {
		return Summary{}, fmt.Errorf("collect order stats: %w", err)
	}

	return Summary{
		TotalCustomers: customers,
		TotalOrders:    stats.OrderCount,
		TotalRevenue:   stats.Revenue,
	}, nil
}

// enqueueEvent кладёт событие в outbox. Ошибка постановки не валит мутацию:
// публикация событий вспомогательна по отношению к основной записи.
func (s *Service) enqueueEvent(aggregateType, aggregateID, eventType string, payload any) {
	if s.outbox == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("failed to marshal event payload")
		return
	}

	if _, err := s.outbox.Enqueue(domain.NewOutboxMessage(aggregateType, aggregateID, eventType, body)); err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("failed to enqueue outbox event")
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
