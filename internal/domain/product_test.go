package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func TestProductValidateFields(t *testing.T) {
	product := domain.Product{Name: "Laptop", Price: decimal.NewFromFloat(999.99), Stock: 4}
	if errs := product.ValidateFields(); len(errs) != 0 {
		t.Fatalf("expected valid product, got %v", errs)
	}

	zeroPrice := domain.Product{Name: "Laptop", Price: decimal.Zero, Stock: 1}
	errs := zeroPrice.ValidateFields()
	if len(errs) != 1 || errs[0] != domain.MsgPricePositive {
		t.Fatalf("expected price error, got %v", errs)
	}

	negativePrice := domain.Product{Name: "Laptop", Price: decimal.NewFromInt(-5), Stock: 1}
	errs = negativePrice.ValidateFields()
	if len(errs) != 1 || errs[0] != domain.MsgPricePositive {
		t.Fatalf("expected price error, got %v", errs)
	}

	negativeStock := domain.Product{Name: "Laptop", Price: decimal.NewFromInt(5), Stock: -1}
	errs = negativeStock.ValidateFields()
	if len(errs) != 1 || errs[0] != domain.MsgStockNegative {
		t.Fatalf("expected stock error, got %v", errs)
	}
}

func TestProductIsLowStock(t *testing.T) {
	cases := []struct {
		stock int32
		want  bool
	}{
		{stock: 0, want: true},
		{stock: 9, want: true},
		{stock: 10, want: false},
		{stock: 50, want: false},
	}
	for _, tc := range cases {
		p := domain.Product{Stock: tc.stock}
		if got := p.IsLowStock(); got != tc.want {
			t.Fatalf("stock %d: expected %v, got %v", tc.stock, tc.want, got)
		}
	}
}
