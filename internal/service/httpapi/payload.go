package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// Wire-представления доменных сущностей. Денежные поля сериализуются
// строками, чтобы не терять точность на стороне клиента.

type customerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type productInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int32           `json:"stock"`
}

type orderInput struct {
	CustomerID string     `json:"customerId"`
	ProductIDs []string   `json:"productIds"`
	OrderDate  *time.Time `json:"orderDate,omitempty"`
}

type customerPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type productPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int32           `json:"stock"`
	CreatedAt time.Time       `json:"createdAt"`
}

type orderPayload struct {
	ID          string           `json:"id"`
	Customer    customerPayload  `json:"customer"`
	Products    []productPayload `json:"products"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	OrderDate   time.Time        `json:"orderDate"`
}

type summaryPayload struct {
	TotalCustomers int64           `json:"totalCustomers"`
	TotalOrders    int64           `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

func customerPayloadOf(c domain.Customer) customerPayload {
	return customerPayload{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

func customersPayload(customers []domain.Customer) []customerPayload {
	out := make([]customerPayload, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerPayloadOf(c))
	}
	return out
}

func productPayloadOf(p domain.Product) productPayload {
	return productPayload{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
	}
}

func productsPayload(products []domain.Product) []productPayload {
	out := make([]productPayload, 0, len(products))
	for _, p := range products {
		out = append(out, productPayloadOf(p))
	}
	return out
}

func orderPayloadOf(o domain.Order) orderPayload {
	payload := orderPayload{
		ID:          o.ID,
		Products:    productsPayload(o.Products),
		TotalAmount: o.TotalAmount,
		OrderDate:   o.OrderDate,
	}
	if o.Customer.ID != "" {
		payload.Customer = customerPayloadOf(o.Customer)
	} else {
		payload.Customer = customerPayload{ID: o.CustomerID}
	}
	return payload
}

func ordersPayload(orders []domain.Order) []orderPayload {
	out := make([]orderPayload, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderPayloadOf(o))
	}
	return out
}
