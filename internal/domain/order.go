package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MsgOrderCustomerRequired = "Customer is required"
	MsgOrderProductsRequired = "Order must contain at least one product"
	MsgOrderTotalMismatch    = "Order total does not match product prices"
)

// Order агрегирует заказ клиента и набор товаров.
// Заказ полностью формируется при создании и дальше не меняется.
type Order struct {
	ID         string
	CustomerID string
	// Customer — разрешённая ассоциация; заполняется репозиторием при чтении.
	Customer Customer
	// Products — товары заказа (many-to-many, минимум один).
	Products []Product
	// TotalAmount фиксируется один раз при создании как сумма текущих цен товаров.
	// Последующие изменения цен на заказ не влияют.
	TotalAmount decimal.Decimal
	// OrderDate — дата заказа; по умолчанию момент создания.
	OrderDate time.Time
	CreatedAt time.Time
}

// TotalOf считает сумму текущих цен набора товаров.
func TotalOf(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}

// ValidateInvariants проверяет инварианты заказа перед сохранением
// и возвращает все замечания разом.
func (o Order) ValidateInvariants() []string {
	var errs []string

	if o.CustomerID == "" {
		errs = append(errs, MsgOrderCustomerRequired)
	}
	if len(o.Products) == 0 {
		errs = append(errs, MsgOrderProductsRequired)
	}
	// Сверяем зафиксированную сумму с суммой цен позиций.
	if len(o.Products) > 0 && !o.TotalAmount.Equal(TotalOf(o.Products)) {
		errs = append(errs, MsgOrderTotalMismatch)
	}

	return errs
}
