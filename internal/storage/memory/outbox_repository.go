package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

type outboxStatus string

const (
	outboxPending outboxStatus = "pending"
	outboxSent    outboxStatus = "sent"
	outboxFailed  outboxStatus = "failed"
)

// outboxRecord — событие плюс служебные поля доставки.
type outboxRecord struct {
	msg       domain.OutboxMessage
	status    outboxStatus
	attempts  int
	createdAt time.Time
	updatedAt time.Time
}

// outboxRepositoryInMemory — in-memory реализация transactional outbox
// для запуска без PostgreSQL и для тестов.
type outboxRepositoryInMemory struct {
	mu      sync.RWMutex
	records map[string]*outboxRecord
}

// NewOutboxRepository создаёт пустой in-memory outbox.
func NewOutboxRepository() *outboxRepositoryInMemory {
	return &outboxRepositoryInMemory{records: make(map[string]*outboxRecord)}
}

func (r *outboxRepositoryInMemory) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	r.records[msg.ID] = &outboxRecord{
		msg:       msg,
		status:    outboxPending,
		createdAt: now,
		updatedAt: now,
	}

	return msg, nil
}

func (r *outboxRepositoryInMemory) PullPending(limit int) ([]domain.OutboxMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	pending := r.pendingLocked()
	if len(pending) > limit {
		pending = pending[:limit]
	}

	batch := make([]domain.OutboxMessage, 0, len(pending))
	for _, rec := range pending {
		batch = append(batch, rec.msg)
	}

	return batch, nil
}

func (r *outboxRepositoryInMemory) Stats() (domain.OutboxStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.OutboxStats
	for _, rec := range r.pendingLocked() {
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() {
			stats.OldestPendingAt = rec.createdAt
		}
	}

	return stats, nil
}

func (r *outboxRepositoryInMemory) MarkSent(id string) error {
	return r.setStatus(id, outboxSent)
}

func (r *outboxRepositoryInMemory) MarkFailed(id string) error {
	return r.setStatus(id, outboxFailed)
}

func (r *outboxRepositoryInMemory) setStatus(id string, status outboxStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return domain.ErrOutboxPublish
	}

	rec.status = status
	rec.attempts++
	rec.updatedAt = time.Now().UTC()
	return nil
}

// pendingLocked возвращает pending-записи, старые первыми. Требует удержания mu.
func (r *outboxRepositoryInMemory) pendingLocked() []*outboxRecord {
	pending := make([]*outboxRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.status == outboxPending {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].createdAt.Before(pending[j].createdAt)
	})
	return pending
}

var _ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)
