package domain

import "errors"

var (
	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmailExists сигнализирует о нарушении уникальности email.
	// Источником истины является unique-индекс хранилища, а не проверка в приложении.
	ErrEmailExists = errors.New("email already exists")
	// ErrAlreadyExists возвращается при попытке создать запись с занятым ID.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsConflict проверяет, является ли ошибка конфликтом уникальности.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailExists) || errors.Is(err, ErrAlreadyExists)
}
