package memory

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// orderRecord хранит заказ вместе со списком ID товаров;
// ассоциации разрешаются при чтении через репозитории клиентов и товаров.
type orderRecord struct {
	order      domain.Order
	productIDs []string
}

// orderRepositoryInMemory — in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu        sync.RWMutex
	items     map[string]orderRecord
	customers domain.CustomerRepository
	products  domain.ProductRepository
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
// Репозитории клиентов и товаров нужны для разрешения ассоциаций при чтении.
func NewOrderRepository(customers domain.CustomerRepository, products domain.ProductRepository) domain.OrderRepository {
	return &orderRepositoryInMemory{
		items:     make(map[string]orderRecord),
		customers: customers,
		products:  products,
	}
}

// Create сохраняет заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrAlreadyExists
	}

	ids := make([]string, 0, len(order.Products))
	for _, p := range order.Products {
		ids = append(ids, p.ID)
	}
	// Храним только ссылки; состояние товаров не копируется,
	// зафиксированной остаётся лишь сумма заказа.
	stored := order
	stored.Customer = domain.Customer{}
	stored.Products = nil
	r.items[order.ID] = orderRecord{order: stored, productIDs: ids}
	return nil
}

// Get возвращает заказ с разрешёнными ассоциациями или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	record, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.resolve(record)
}

// List возвращает заказы по фильтру с разрешёнными ассоциациями, от новых к старым.
func (r *orderRepositoryInMemory) List(filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	records := make([]orderRecord, 0, len(r.items))
	for _, record := range r.items {
		records = append(records, record)
	}
	r.mu.RUnlock()

	result := make([]domain.Order, 0, len(records))
	for _, record := range records {
		order, err := r.resolve(record)
		if err != nil {
			return nil, err
		}
		if !matchesOrder(order, filter) {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].OrderDate.Equal(result[j].OrderDate) {
			return result[i].OrderDate.After(result[j].OrderDate)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// Stats возвращает число заказов и сумму зафиксированных total_amount.
func (r *orderRepositoryInMemory) Stats() (domain.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.OrderStats{Revenue: decimal.Zero}
	for _, record := range r.items {
		stats.OrderCount++
		stats.Revenue = stats.Revenue.Add(record.order.TotalAmount)
	}
	return stats, nil
}

func (r *orderRepositoryInMemory) resolve(record orderRecord) (domain.Order, error) {
	order := record.order

	customer, err := r.customers.Get(order.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Customer = customer

	products, err := r.products.GetMany(record.productIDs)
	if err != nil {
		return domain.Order{}, err
	}
	order.Products = products

	return order, nil
}

func matchesOrder(order domain.Order, filter domain.OrderFilter) bool {
	if filter.TotalGTE != nil && order.TotalAmount.LessThan(*filter.TotalGTE) {
		return false
	}
	if filter.TotalLTE != nil && order.TotalAmount.GreaterThan(*filter.TotalLTE) {
		return false
	}
	if filter.CustomerNameContains != "" && !containsFold(order.Customer.Name, filter.CustomerNameContains) {
		return false
	}
	if filter.ProductNameContains != "" {
		found := false
		for _, p := range order.Products {
			if containsFold(p.Name, filter.ProductNameContains) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.OrderDateGTE != nil && order.OrderDate.Before(*filter.OrderDateGTE) {
		return false
	}
	return true
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
