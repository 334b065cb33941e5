package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create сохраняет заказ и связи на товары в одной транзакции:
// заказ без товаров в базе появиться не может.
func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total_amount, order_date, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		order.ID, order.CustomerID, order.TotalAmount, order.OrderDate, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, product := range order.Products {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id)
			VALUES ($1,$2)
		`, order.ID, product.ID); err != nil {
			return fmt.Errorf("insert order product: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	if !isUUID(id) {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.customer_id, o.total_amount, o.order_date, o.created_at,
		       c.id, c.name, c.email, c.phone, c.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.TotalAmount, &order.OrderDate, &order.CreatedAt,
		&order.Customer.ID, &order.Customer.Name, &order.Customer.Email,
		&order.Customer.Phone, &order.Customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	productsByOrder, err := r.loadProducts(ctx, []string{order.ID})
	if err != nil {
		return domain.Order{}, err
	}
	order.Products = productsByOrder[order.ID]

	return order, nil
}

// List выбирает страницу заказов одним запросом, а товары всей страницы —
// вторым, избегая N+1 обращений.
func (r *orderRepository) List(filter domain.OrderFilter) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	conds := []condition{
		likeCondition("c.name", filter.CustomerNameContains),
	}
	if filter.TotalGTE != nil {
		conds = append(conds, cmpCondition("o.total_amount", ">=", *filter.TotalGTE))
	}
	if filter.TotalLTE != nil {
		conds = append(conds, cmpCondition("o.total_amount", "<=", *filter.TotalLTE))
	}
	if filter.OrderDateGTE != nil {
		conds = append(conds, cmpCondition("o.order_date", ">=", *filter.OrderDateGTE))
	}
	if filter.ProductNameContains != "" {
		conds = append(conds, condition{
			expr: `EXISTS (
				SELECT 1
				FROM order_products op
				JOIN products p ON p.id = op.product_id
				WHERE op.order_id = o.id AND p.name ILIKE '%%' || $%d || '%%'
			)`,
			value: filter.ProductNameContains,
		})
	}
	where, args := buildConditions(conds...)

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.customer_id, o.total_amount, o.order_date, o.created_at,
		       c.id, c.name, c.email, c.phone, c.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
	`+where+`
		ORDER BY o.order_date DESC, o.id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.CustomerID, &order.TotalAmount, &order.OrderDate, &order.CreatedAt,
			&order.Customer.ID, &order.Customer.Name, &order.Customer.Email,
			&order.Customer.Phone, &order.Customer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	productsByOrder, err := r.loadProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Products = productsByOrder[orders[i].ID]
	}

	return orders, nil
}

func (r *orderRepository) Stats() (domain.OrderStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		stats   domain.OrderStats
		revenue decimal.Decimal
	)
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
	`).Scan(&stats.OrderCount, &revenue); err != nil {
		return domain.OrderStats{}, fmt.Errorf("order stats query failed: %w", err)
	}
	stats.Revenue = revenue

	return stats, nil
}

// loadProducts загружает товары сразу для набора заказов и группирует по order_id.
func (r *orderRepository) loadProducts(ctx context.Context, orderIDs []string) (map[string][]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT op.order_id, p.id, p.name, p.price, p.stock, p.created_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = ANY($1::uuid[])
		ORDER BY p.created_at ASC, p.id ASC
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.Product, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			product domain.Product
		)
		if err := rows.Scan(&orderID, &product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		result[orderID] = append(result[orderID], product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order products: %w", err)
	}

	return result, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
