package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		product.ID, product.Name, product.Price, product.Stock, product.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *productRepository) Get(id string) (domain.Product, error) {
	if !isUUID(id) {
		return domain.Product{}, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, stock, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

// GetMany загружает товары одним запросом и возвращает их в порядке запрошенных ID.
// ID, не являющиеся uuid, пропускаются как отсутствующие.
func (r *productRepository) GetMany(ids []string) ([]domain.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, stock, created_at
		FROM products
		WHERE id = ANY($1::uuid[])
	`, valid)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	found := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		found[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	result := make([]domain.Product, 0, len(found))
	for _, id := range ids {
		if product, ok := found[id]; ok {
			result = append(result, product)
		}
	}

	return result, nil
}

func (r *productRepository) List(filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	conds := []condition{likeCondition("name", filter.NameContains)}
	if filter.PriceGTE != nil {
		conds = append(conds, cmpCondition("price", ">=", *filter.PriceGTE))
	}
	if filter.PriceLTE != nil {
		conds = append(conds, cmpCondition("price", "<=", *filter.PriceLTE))
	}
	if filter.StockGTE != nil {
		conds = append(conds, cmpCondition("stock", ">=", *filter.StockGTE))
	}
	if filter.StockLTE != nil {
		conds = append(conds, cmpCondition("stock", "<=", *filter.StockLTE))
	}
	where, args := buildConditions(conds...)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, stock, created_at
		FROM products
	`+where+`
		ORDER BY created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// RestockBelow пополняет все low-stock товары одним UPDATE:
// конкурентные читатели видят либо старое состояние, либо полное пополнение.
func (r *productRepository) RestockBelow(threshold, delta int32) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		UPDATE products
		SET stock = stock + $2
		WHERE stock < $1
		RETURNING id, name, price, stock, created_at
	`, threshold, delta)
	if err != nil {
		return nil, fmt.Errorf("restock products: %w", err)
	}
	defer rows.Close()

	updated := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan restocked product: %w", err)
		}
		updated = append(updated, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restocked products: %w", err)
	}

	// RETURNING не гарантирует порядок; сортируем для детерминизма.
	sort.Slice(updated, func(i, j int) bool { return updated[i].ID < updated[j].ID })

	return updated, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
