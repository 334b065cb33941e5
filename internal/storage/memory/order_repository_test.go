package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

type orderFixture struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()

	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(customers, products)

	if err := customers.Create(newCustomer("c1", "Alice Smith", "alice@example.com")); err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if err := products.Create(newProduct("p1", "Laptop", 15.75, 4)); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := products.Create(newProduct("p2", "Mouse", 9.25, 30)); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	return orderFixture{customers: customers, products: products, orders: orders}
}

func (f orderFixture) createOrder(t *testing.T, id string, productIDs []string, orderDate time.Time) {
	t.Helper()

	products, err := f.products.GetMany(productIDs)
	if err != nil {
		t.Fatalf("get products failed: %v", err)
	}
	order := domain.Order{
		ID:          id,
		CustomerID:  "c1",
		Products:    products,
		TotalAmount: domain.TotalOf(products),
		OrderDate:   orderDate,
		CreatedAt:   time.Now().UTC(),
	}
	if err := f.orders.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	f := newOrderFixture(t)
	f.createOrder(t, "o1", []string{"p1", "p2"}, time.Now().UTC())

	stored, err := f.orders.Get("o1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Customer.Email != "alice@example.com" {
		t.Fatalf("expected resolved customer, got %+v", stored.Customer)
	}
	if len(stored.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(stored.Products))
	}
	if !stored.TotalAmount.Equal(decimal.NewFromFloat(25.00)) {
		t.Fatalf("expected total 25.00, got %s", stored.TotalAmount)
	}

	if _, err := f.orders.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListFilters(t *testing.T) {
	f := newOrderFixture(t)
	now := time.Now().UTC()
	f.createOrder(t, "o1", []string{"p1", "p2"}, now)
	f.createOrder(t, "o2", []string{"p2"}, now.Add(-30*24*time.Hour))

	minTotal := decimal.NewFromInt(20)
	big, err := f.orders.List(domain.OrderFilter{TotalGTE: &minTotal})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(big) != 1 || big[0].ID != "o1" {
		t.Fatalf("expected only o1, got %v", big)
	}

	byProduct, err := f.orders.List(domain.OrderFilter{ProductNameContains: "laptop"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(byProduct) != 1 || byProduct[0].ID != "o1" {
		t.Fatalf("expected only o1, got %v", byProduct)
	}

	byCustomer, err := f.orders.List(domain.OrderFilter{CustomerNameContains: "smith"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(byCustomer) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(byCustomer))
	}

	cutoff := now.Add(-7 * 24 * time.Hour)
	recent, err := f.orders.List(domain.OrderFilter{OrderDateGTE: &cutoff})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "o1" {
		t.Fatalf("expected only recent o1, got %v", recent)
	}
}

func TestOrderRepository_Stats(t *testing.T) {
	f := newOrderFixture(t)

	stats, err := f.orders.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.OrderCount != 0 || !stats.Revenue.Equal(decimal.Zero) {
		t.Fatalf("expected empty stats, got %+v", stats)
	}

	now := time.Now().UTC()
	f.createOrder(t, "o1", []string{"p1", "p2"}, now)
	f.createOrder(t, "o2", []string{"p2"}, now)

	stats, err = f.orders.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.OrderCount != 2 {
		t.Fatalf("expected 2 orders, got %d", stats.OrderCount)
	}
	if !stats.Revenue.Equal(decimal.NewFromFloat(34.25)) {
		t.Fatalf("expected revenue 34.25, got %s", stats.Revenue)
	}
}
