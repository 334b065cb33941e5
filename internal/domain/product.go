package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MsgPricePositive = "Price must be positive"
	MsgStockNegative = "Stock cannot be negative"
)

// LowStockThreshold — порог, ниже которого товар считается low-stock.
const LowStockThreshold int32 = 10

// RestockIncrement — на сколько единиц пополняется каждый low-stock товар.
const RestockIncrement int32 = 10

// Product представляет товар каталога.
// Единственное изменяемое поле — Stock (операция пополнения).
type Product struct {
	ID   string
	Name string
	// Price — цена в денежных единицах, строго больше нуля.
	Price decimal.Decimal
	// Stock — неотрицательный остаток на складе.
	Stock     int32
	CreatedAt time.Time
}

// ValidatePrice проверяет, что цена строго положительна.
func ValidatePrice(price decimal.Decimal) []string {
	if price.Sign() <= 0 {
		return []string{MsgPricePositive}
	}
	return nil
}

// ValidateStock проверяет, что остаток неотрицателен.
func ValidateStock(stock int32) []string {
	if stock < 0 {
		return []string{MsgStockNegative}
	}
	return nil
}

// ValidateFields проверяет поля товара и возвращает все замечания разом.
func (p Product) ValidateFields() []string {
	var errs []string

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, MsgNameRequired)
	}
	errs = append(errs, ValidatePrice(p.Price)...)
	errs = append(errs, ValidateStock(p.Stock)...)

	return errs
}

// IsLowStock сообщает, попадает ли товар под пополнение.
func (p Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}
