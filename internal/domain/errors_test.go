package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func TestIsConflict(t *testing.T) {
	conflicts := []error{
		domain.ErrEmailExists,
		domain.ErrAlreadyExists,
		fmt.Errorf("insert customer: %w", domain.ErrEmailExists),
	}
	for _, err := range conflicts {
		if !domain.IsConflict(err) {
			t.Fatalf("%v must count as conflict", err)
		}
	}

	others := []error{
		nil,
		domain.ErrCustomerNotFound,
		errors.New("connection refused"),
	}
	for _, err := range others {
		if domain.IsConflict(err) {
			t.Fatalf("%v must not count as conflict", err)
		}
	}
}
