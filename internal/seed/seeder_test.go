package seed_test

import (
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/seed"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

func newSeedFixture() (*crm.Service, *seed.Seeder) {
	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(customers, products)
	svc := crm.NewService(customers, products, orders, nil, nil)
	return svc, seed.New(svc)
}

func TestSeeder_Run(t *testing.T) {
	svc, seeder := newSeedFixture()

	result, err := seeder.Run(seed.Config{Customers: 5, Products: 8, Orders: 10})
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	if result.Customers != 5 {
		t.Fatalf("expected 5 customers, got %d", result.Customers)
	}
	if result.Products != 8 {
		t.Fatalf("expected 8 products, got %d", result.Products)
	}
	if result.Orders != 10 {
		t.Fatalf("expected 10 orders, got %d", result.Orders)
	}

	customers, err := svc.ListCustomers(domain.CustomerFilter{})
	if err != nil {
		t.Fatalf("list customers failed: %v", err)
	}
	emails := make(map[string]bool, len(customers))
	for _, c := range customers {
		if emails[c.Email] {
			t.Fatalf("duplicate email generated: %s", c.Email)
		}
		emails[c.Email] = true
	}

	orders, err := svc.ListOrders(domain.OrderFilter{})
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	for _, order := range orders {
		if len(order.Products) < 1 || len(order.Products) > 5 {
			t.Fatalf("order %s has %d products, expected 1..5", order.ID, len(order.Products))
		}
		if !order.TotalAmount.Equal(domain.TotalOf(order.Products)) {
			t.Fatalf("order %s total %s does not match product prices", order.ID, order.TotalAmount)
		}
	}
}

func TestSeeder_OrdersNeedCustomersAndProducts(t *testing.T) {
	_, seeder := newSeedFixture()

	result, err := seeder.Run(seed.Config{Customers: 0, Products: 0, Orders: 10})
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
	if result.Orders != 0 {
		t.Fatalf("expected no orders without customers and products, got %d", result.Orders)
	}
}

func TestSeeder_ProductsWithinBounds(t *testing.T) {
	svc, seeder := newSeedFixture()

	if _, err := seeder.Run(seed.Config{Customers: 1, Products: 20, Orders: 0}); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	products, err := svc.ListProducts(domain.ProductFilter{})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	for _, p := range products {
		if p.Price.IsNegative() || p.Price.IsZero() {
			t.Fatalf("product %s has non-positive price %s", p.ID, p.Price)
		}
		if p.Stock < 0 || p.Stock > 50 {
			t.Fatalf("product %s has stock %d outside 0..50", p.ID, p.Stock)
		}
	}
}
