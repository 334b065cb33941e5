package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerFilter описывает опциональные условия выборки клиентов.
// Пустое строковое поле означает отсутствие ограничения; все условия объединяются по AND.
type CustomerFilter struct {
	// NameContains — регистронезависимое вхождение подстроки в имя.
	NameContains string
	// EmailContains — регистронезависимое вхождение подстроки в email.
	EmailContains string
}

// ProductFilter описывает опциональные условия выборки товаров.
// nil-указатель означает отсутствие ограничения; границы включительные.
type ProductFilter struct {
	NameContains string
	PriceGTE     *decimal.Decimal
	PriceLTE     *decimal.Decimal
	StockGTE     *int32
	StockLTE     *int32
}

// OrderFilter описывает опциональные условия выборки заказов.
type OrderFilter struct {
	TotalGTE *decimal.Decimal
	TotalLTE *decimal.Decimal
	// CustomerNameContains фильтрует по имени клиента заказа.
	CustomerNameContains string
	// ProductNameContains оставляет заказы, содержащие подходящий товар.
	ProductNameContains string
	// OrderDateGTE отбирает заказы не старше указанной даты (для напоминаний).
	OrderDateGTE *time.Time
}

// OrderStats — агрегаты по всем сохранённым заказам.
type OrderStats struct {
	OrderCount int64
	Revenue    decimal.Decimal
}

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет нового клиента. Возвращает ErrEmailExists,
	// если email уже занят (гарантия уровня хранилища).
	Create(customer Customer) error
	// Get возвращает клиента по ID или ErrCustomerNotFound.
	Get(id string) (Customer, error)
	// ExistsByEmail проверяет занятость email. Используется как предварительная
	// проверка для дружелюбного сообщения; от гонок защищает Create.
	ExistsByEmail(email string) (bool, error)
	// List возвращает клиентов по фильтру, отсортированных по дате создания.
	List(filter CustomerFilter) ([]Customer, error)
	// Count возвращает общее число клиентов.
	Count() (int64, error)
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар.
	Create(product Product) error
	// Get возвращает товар по ID или ErrProductNotFound.
	Get(id string) (Product, error)
	// GetMany возвращает найденные товары по списку ID одним запросом.
	// Отсутствующие ID просто не попадают в результат; порядок следует запросу.
	GetMany(ids []string) ([]Product, error)
	// List возвращает товары по фильтру.
	List(filter ProductFilter) ([]Product, error)
	// RestockBelow атомарно увеличивает остаток всех товаров со stock < threshold
	// на delta и возвращает обновлённые записи. Пустой результат — не ошибка.
	RestockBelow(threshold, delta int32) ([]Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ вместе со связями на товары в одной транзакции.
	Create(order Order) error
	// Get возвращает заказ с разрешёнными клиентом и товарами или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает заказы по фильтру с разрешёнными ассоциациями.
	// Ассоциации страницы результатов загружаются пакетно, без N+1 запросов.
	List(filter OrderFilter) ([]Order, error)
	// Stats возвращает число заказов и суммарную выручку.
	Stats() (OrderStats, error)
}
