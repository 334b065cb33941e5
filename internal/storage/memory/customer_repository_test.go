package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

func newCustomer(id, name, email string) domain.Customer {
	return domain.Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCustomerRepository_CreateGet(t *testing.T) {
	repo := memory.NewCustomerRepository()
	customer := newCustomer("c1", "Alice", "alice@example.com")

	if err := repo.Create(customer); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(customer.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Email != customer.Email {
		t.Fatalf("expected email %s, got %s", customer.Email, stored.Email)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerRepository_DuplicateEmail(t *testing.T) {
	repo := memory.NewCustomerRepository()
	if err := repo.Create(newCustomer("c1", "Alice", "alice@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.Create(newCustomer("c2", "Other Alice", "ALICE@example.com"))
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	taken, err := repo.ExistsByEmail("Alice@Example.Com")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !taken {
		t.Fatalf("expected email to be taken")
	}
}

func TestCustomerRepository_ListFilters(t *testing.T) {
	repo := memory.NewCustomerRepository()
	if err := repo.Create(newCustomer("c1", "Alice Smith", "alice@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newCustomer("c2", "Bob Jones", "bob@other.org")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byName, err := repo.List(domain.CustomerFilter{NameContains: "ali"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "c1" {
		t.Fatalf("expected only c1, got %v", byName)
	}

	byEmail, err := repo.List(domain.CustomerFilter{EmailContains: "other.org"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(byEmail) != 1 || byEmail[0].ID != "c2" {
		t.Fatalf("expected only c2, got %v", byEmail)
	}

	all, err := repo.List(domain.CustomerFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(all))
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}
