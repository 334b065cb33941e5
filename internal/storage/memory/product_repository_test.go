package memory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

func newProduct(id, name string, price float64, stock int32) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.NewFromFloat(price),
		Stock:     stock,
		CreatedAt: time.Now().UTC(),
	}
}

func TestProductRepository_GetMany(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p1", "Laptop", 999.99, 4)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newProduct("p2", "Mouse", 19.99, 30)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	products, err := repo.GetMany([]string{"p2", "missing", "p1"})
	if err != nil {
		t.Fatalf("get many failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != "p2" || products[1].ID != "p1" {
		t.Fatalf("expected requested order [p2 p1], got [%s %s]", products[0].ID, products[1].ID)
	}
}

func TestProductRepository_RestockBelow(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p1", "Laptop", 999.99, 3)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newProduct("p2", "Mouse", 19.99, 12)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newProduct("p3", "Keyboard", 49.99, 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.RestockBelow(10, 10)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 updated products, got %d", len(updated))
	}
	if updated[0].ID != "p1" || updated[0].Stock != 13 {
		t.Fatalf("expected p1 stock 13, got %s stock %d", updated[0].ID, updated[0].Stock)
	}
	if updated[1].ID != "p3" || updated[1].Stock != 15 {
		t.Fatalf("expected p3 stock 15, got %s stock %d", updated[1].ID, updated[1].Stock)
	}

	untouched, err := repo.Get("p2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if untouched.Stock != 12 {
		t.Fatalf("expected p2 stock unchanged at 12, got %d", untouched.Stock)
	}

	// Повторное пополнение не находит товаров ниже порога.
	again, err := repo.RestockBelow(10, 10)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no updates, got %d", len(again))
	}
}

func TestProductRepository_ListFilters(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p1", "Laptop", 999.99, 4)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newProduct("p2", "Mouse", 19.99, 30)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newProduct("p3", "Monitor", 249.50, 7)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	low := decimal.NewFromInt(100)
	high := decimal.NewFromInt(1000)
	inRange, err := repo.List(domain.ProductFilter{PriceGTE: &low, PriceLTE: &high})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(inRange) != 2 {
		t.Fatalf("expected 2 products in range, got %d", len(inRange))
	}
	for _, p := range inRange {
		if p.ID == "p2" {
			t.Fatalf("p2 should be filtered out by price range")
		}
	}

	stockMax := int32(10)
	lowStock, err := repo.List(domain.ProductFilter{StockLTE: &stockMax})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lowStock) != 2 {
		t.Fatalf("expected 2 low stock products, got %d", len(lowStock))
	}

	byName, err := repo.List(domain.ProductFilter{NameContains: "mo"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(byName) != 2 {
		t.Fatalf("expected 2 products matching name, got %d", len(byName))
	}
}
