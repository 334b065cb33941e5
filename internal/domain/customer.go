package domain

import (
	"regexp"
	"strings"
	"time"
)

// Сообщения валидации, которые уходят клиенту API как есть.
const (
	MsgNameRequired  = "Name is required"
	MsgEmailRequired = "Email is required"
	MsgInvalidPhone  = "Invalid phone format. Use +1234567890 or 123-456-7890"
	MsgEmailExists   = "Email already exists"
)

// phonePattern — допустимые форматы телефона: +1234567890, 123-456-7890, 123 456 7890.
var phonePattern = regexp.MustCompile(`^\+?\d{1,3}[- ]?\d{3,}[- ]?\d{3,}$`)

// Customer представляет клиента CRM.
// После создания запись неизменяема: операций обновления и удаления нет.
type Customer struct {
	ID string
	// Name — обязательное непустое имя.
	Name string
	// Email уникален среди всех клиентов.
	Email string
	// Phone опционален; если задан, обязан соответствовать phonePattern.
	Phone     string
	CreatedAt time.Time
}

// ValidatePhone проверяет формат телефона. Пустое значение допустимо.
func ValidatePhone(phone string) []string {
	if phone == "" {
		return nil
	}
	if !phonePattern.MatchString(phone) {
		return []string{MsgInvalidPhone}
	}
	return nil
}

// ValidateFields проверяет поля клиента и возвращает все замечания разом,
// не останавливаясь на первом: batch-операции должны видеть полный список.
// Уникальность email проверяется на уровне хранилища, не здесь.
func (c Customer) ValidateFields() []string {
	var errs []string

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, MsgNameRequired)
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, MsgEmailRequired)
	}
	errs = append(errs, ValidatePhone(c.Phone)...)

	return errs
}
