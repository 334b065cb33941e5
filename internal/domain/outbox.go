package domain

import "time"

// OutboxMessage — событие домена, сохранённое для последующей публикации.
// Запись в outbox происходит в том же хранилище, что и доменная мутация,
// публикацию наружу выполняет отдельный воркер.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// NewOutboxMessage собирает событие по агрегату и типу.
// ID присваивает хранилище при Enqueue.
func NewOutboxMessage(aggregateType, aggregateID, eventType string, payload []byte) OutboxMessage {
	return OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
	}
}

// OutboxStats — снимок backlog: сколько событий ждут публикации и с какого момента.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository сохраняет события и отслеживает статус их доставки.
type OutboxRepository interface {
	// Enqueue сохраняет событие со статусом pending; присваивает ID, если он пуст.
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	// PullPending возвращает до limit старейших pending-событий.
	PullPending(limit int) ([]OutboxMessage, error)
	// Stats возвращает состояние backlog для метрик.
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher доставляет событие во внешний брокер.
// Реализация должна переживать повторную доставку одного события.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}
