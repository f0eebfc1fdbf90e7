package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ndanilenko/marketplace-server/internal/model"
)

var _ model.ProductStore = (*ProductRepository)(nil)

type ProductRepository struct {
	db *Connection
}

func NewProductRepository(db *Connection) *ProductRepository {
	return &ProductRepository{
		db: db,
	}
}

const productColumns = `id, owner_id, name, description, price, category, condition, stock,
			  image, status, rejection_reason, moderated_by, moderated_at, created_at, updated_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Condition,
		&p.Stock, &p.Image, &p.Status, &p.RejectionReason, &p.ModeratedBy, &p.ModeratedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *ProductRepository) Create(ctx context.Context, product model.Product) (model.Product, error) {
	query := `INSERT INTO products (id, owner_id, name, description, price, category, condition, stock,
			  image, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING ` + productColumns

	saved, err := scanProduct(r.db.QueryRow(ctx, query,
		product.ID, product.OwnerID, product.Name, product.Description, product.Price,
		product.Category, product.Condition, product.Stock, product.Image, product.Status,
		product.CreatedAt, product.UpdatedAt,
	))
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	return saved, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, model.ErrNotFound
		}
		return model.Product{}, fmt.Errorf("failed to get product by id: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by owner: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) GetByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by status: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) Update(ctx context.Context, product model.Product) (model.Product, error) {
	query := `UPDATE products
			  SET name = $2, description = $3, price = $4, category = $5, condition = $6,
			      stock = $7, image = $8, updated_at = $9
			  WHERE id = $1
			  RETURNING ` + productColumns

	updated, err := scanProduct(r.db.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Category,
		product.Condition, product.Stock, product.Image, product.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, model.ErrNotFound
		}
		return model.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	return updated, nil
}

// UpdateStatus performs the moderation transition as one conditional
// write so two concurrent moderators cannot both succeed.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus model.ProductStatus, change model.StatusChange) (model.Product, error) {
	query := `UPDATE products
			  SET status = $3, rejection_reason = $4, moderated_by = $5, moderated_at = $6, updated_at = $6
			  WHERE id = $1 AND status = $2
			  RETURNING ` + productColumns

	updated, err := scanProduct(r.db.QueryRow(ctx, query,
		id, fromStatus, change.Status, change.RejectionReason, change.ModeratedBy, change.ModeratedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing product from a lost transition race.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return model.Product{}, getErr
			}
			return model.Product{}, model.ErrNotModified
		}
		return model.Product{}, fmt.Errorf("failed to update product status: %w", err)
	}

	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}
