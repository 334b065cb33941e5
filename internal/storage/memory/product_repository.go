package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrAlreadyExists
	}
	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetMany возвращает найденные товары в порядке запрошенных ID.
// Отсутствующие ID молча пропускаются: решение об ошибке принимает вызывающий.
func (r *productRepositoryInMemory) GetMany(ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// List возвращает товары по фильтру, от новых к старым.
func (r *productRepositoryInMemory) List(filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if !matchesProduct(product, filter) {
			continue
		}
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// RestockBelow увеличивает остаток всех товаров со stock < threshold в одной
// критической секции: конкурентные читатели не видят частичного пополнения.
func (r *productRepositoryInMemory) RestockBelow(threshold, delta int32) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]domain.Product, 0)
	for id, product := range r.items {
		if product.Stock >= threshold {
			continue
		}
		product.Stock += delta
		r.items[id] = product
		updated = append(updated, product)
	}

	sort.Slice(updated, func(i, j int) bool {
		return updated[i].ID < updated[j].ID
	})

	return updated, nil
}

func matchesProduct(product domain.Product, filter domain.ProductFilter) bool {
	if filter.NameContains != "" && !containsFold(product.Name, filter.NameContains) {
		return false
	}
	if filter.PriceGTE != nil && product.Price.LessThan(*filter.PriceGTE) {
		return false
	}
	if filter.PriceLTE != nil && product.Price.GreaterThan(*filter.PriceLTE) {
		return false
	}
	if filter.StockGTE != nil && product.Stock < *filter.StockGTE {
		return false
	}
	if filter.StockLTE != nil && product.Stock > *filter.StockLTE {
		return false
	}
	return true
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
