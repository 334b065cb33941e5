package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

// Create вставляет клиента; уникальность email гарантирует unique-индекс,
// нарушение которого транслируется в ErrEmailExists.
func (r *customerRepository) Create(customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

func (r *customerRepository) Get(id string) (domain.Customer, error) {
	// Кривой ID не существует в базе по определению; без этой проверки
	// pgx падает на кодировании uuid-параметра вместо "не найдено".
	if !isUUID(id) {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) ExistsByEmail(email string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM customers WHERE LOWER(email) = LOWER($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer email: %w", err)
	}

	return exists, nil
}

func (r *customerRepository) List(filter domain.CustomerFilter) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	where, args := buildConditions(
		likeCondition("name", filter.NameContains),
		likeCondition("email", filter.EmailContains),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers
	`+where+`
		ORDER BY created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) Count() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}

	return count, nil
}

// condition — одно опциональное условие WHERE; value == nil означает "пропустить".
type condition struct {
	expr  string
	value any
}

// likeCondition строит регистронезависимый substring-фильтр или пустое условие.
// Needle экранируется, чтобы % и _ сравнивались буквально, как в memory-бэкенде.
func likeCondition(column, needle string) condition {
	if needle == "" {
		return condition{}
	}
	return condition{
		expr:  column + ` ILIKE '%%' || $%d || '%%' ESCAPE '\'`,
		value: escapeLike(needle),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(needle string) string {
	return likeEscaper.Replace(needle)
}

// cmpCondition строит условие сравнения с включительной границей.
func cmpCondition(column, op string, value any) condition {
	return condition{expr: column + " " + op + " $%d", value: value}
}

// buildConditions собирает непустые условия в WHERE-клауз AND-ами,
// нумеруя плейсхолдеры по порядку аргументов.
func buildConditions(conds ...condition) (string, []any) {
	var (
		exprs []string
		args  []any
	)
	for _, c := range conds {
		if c.value == nil || c.expr == "" {
			continue
		}
		args = append(args, c.value)
		exprs = append(exprs, fmt.Sprintf(c.expr, len(args)))
	}
	if len(exprs) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

// isUUID сообщает, разберёт ли postgres значение как uuid.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
