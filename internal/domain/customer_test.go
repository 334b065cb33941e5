package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"",
		"+1234567890",
		"123-456-7890",
		"+7 495 1234567",
		"+44-207-9460958",
	}
	for _, phone := range valid {
		if errs := domain.ValidatePhone(phone); len(errs) != 0 {
			t.Fatalf("phone %q: expected valid, got %v", phone, errs)
		}
	}

	invalid := []string{
		"abc",
		"12",
		"+",
		"123-45",
		"phone: +1234567890",
	}
	for _, phone := range invalid {
		errs := domain.ValidatePhone(phone)
		if len(errs) != 1 {
			t.Fatalf("phone %q: expected 1 error, got %v", phone, errs)
		}
		if errs[0] != domain.MsgInvalidPhone {
			t.Fatalf("phone %q: unexpected message %q", phone, errs[0])
		}
	}
}

func TestCustomerValidateFields(t *testing.T) {
	customer := domain.Customer{Name: "Alice", Email: "alice@example.com", Phone: "+1234567890"}
	if errs := customer.ValidateFields(); len(errs) != 0 {
		t.Fatalf("expected valid customer, got %v", errs)
	}

	empty := domain.Customer{}
	errs := empty.ValidateFields()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}

	badPhone := domain.Customer{Name: "Bob", Email: "bob@example.com", Phone: "nope"}
	errs = badPhone.ValidateFields()
	if len(errs) != 1 || errs[0] != domain.MsgInvalidPhone {
		t.Fatalf("expected phone error, got %v", errs)
	}
}
