package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
	// emails индексирует занятые адреса (в нижнем регистре) для проверки уникальности.
	emails map[string]string
}

// NewCustomerRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items:  make(map[string]domain.Customer),
		emails: make(map[string]string),
	}
}

// Create сохраняет нового клиента, если ID и email ещё не заняты.
// Уникальность email обеспечивается под тем же мьютексом, что и запись.
func (r *customerRepositoryInMemory) Create(customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[customer.ID]; exists {
		return domain.ErrAlreadyExists
	}
	key := strings.ToLower(customer.Email)
	if _, taken := r.emails[key]; taken {
		return domain.ErrEmailExists
	}

	r.items[customer.ID] = customer
	r.emails[key] = customer.ID
	return nil
}

// Get возвращает клиента или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) Get(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// ExistsByEmail проверяет занятость email без учёта регистра.
func (r *customerRepositoryInMemory) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.emails[strings.ToLower(email)]
	return taken, nil
}

// List возвращает клиентов по фильтру, от новых к старым.
func (r *customerRepositoryInMemory) List(filter domain.CustomerFilter) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		if !matchesCustomer(customer, filter) {
			continue
		}
		result = append(result, customer)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// Count возвращает общее число клиентов.
func (r *customerRepositoryInMemory) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}

func matchesCustomer(customer domain.Customer, filter domain.CustomerFilter) bool {
	if filter.NameContains != "" && !containsFold(customer.Name, filter.NameContains) {
		return false
	}
	if filter.EmailContains != "" && !containsFold(customer.Email, filter.EmailContains) {
		return false
	}
	return true
}

// containsFold — регистронезависимое вхождение подстроки.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
