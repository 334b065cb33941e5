package kafka

import (
	"encoding/json"
	"time"
)

// TopicCRMEvents — единый топик доменных событий CRM.
const TopicCRMEvents = "crm.events"

// EventType определяет тип публикуемого CRM-события.
type EventType string

const (
	EventTypeCustomerCreated EventType = "customer.created"
	EventTypeOrderCreated    EventType = "order.created"
	EventTypeProductRestock  EventType = "product.restocked"
)

// Envelope — формат сообщения в топике: метаданные outbox-записи
// плюс исходный доменный payload как есть.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// CustomerEvent — payload события о клиенте.
type CustomerEvent struct {
	EventType  EventType `json:"event_type"`
	CustomerID string    `json:"customer_id"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
}

// OrderEvent — payload события о заказе.
type OrderEvent struct {
	EventType   EventType `json:"event_type"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	TotalAmount string    `json:"total_amount"`
	ProductIDs  []string  `json:"product_ids"`
	Timestamp   time.Time `json:"timestamp"`
}

// RestockEvent — payload события пополнения остатка товара.
type RestockEvent struct {
	EventType EventType `json:"event_type"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int32     `json:"stock"`
	Timestamp time.Time `json:"timestamp"`
}
