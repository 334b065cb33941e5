package memory_test

import (
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

func TestOutboxRepository_EnqueuePull(t *testing.T) {
	repo := memory.NewOutboxRepository()

	first, err := repo.Enqueue(domain.OutboxMessage{EventType: "customer.created", Payload: []byte(`{}`)})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated message id")
	}

	second, err := repo.Enqueue(domain.OutboxMessage{EventType: "order.created", Payload: []byte(`{}`)})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}

	if err := repo.MarkSent(first.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	if err := repo.MarkFailed(second.ID); err != nil {
		t.Fatalf("mark failed failed: %v", err)
	}

	pending, err = repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(pending))
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected 0 pending, got %d", stats.PendingCount)
	}
}

func TestOutboxRepository_MarkUnknown(t *testing.T) {
	repo := memory.NewOutboxRepository()

	if err := repo.MarkSent("ghost"); err == nil {
		t.Fatal("expected error for unknown message")
	}
	if err := repo.MarkFailed("ghost"); err == nil {
		t.Fatal("expected error for unknown message")
	}
}
