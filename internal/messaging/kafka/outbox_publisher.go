package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// OutboxTopicPublisher доставляет outbox-события в Kafka-топик,
// заворачивая каждое в Envelope. Ключом партиционирования служит
// ID агрегата, чтобы события одного клиента или заказа шли по порядку.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт паблишер поверх Producer. Пустой topic
// заменяется на TopicCRMEvents.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicCRMEvents
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	return p.producer.Send(p.topic, key, Envelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	})
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
