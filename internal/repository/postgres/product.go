package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/pkg/database"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
	"github.com/AlexandruMarc/Easy-Shops/pkg/slug"
)

const productSelect = `
	SELECT p.id, p.name, p.brand, p.price, p.inventory, p.description,
	       c.id, c.name, c.slug, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product, creating its category when needed.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProduct", "INSERT INTO products")
	defer func() { end(err) }()

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := ensureCategory(ctx, tx, &p.Category); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO products (name, brand, price, inventory, description, category_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`,
			p.Name, p.Brand, p.Price, p.Inventory, p.Description, p.Category.ID,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("Product", "name and brand", p.Name+" "+p.Brand)
			}
			return fmt.Errorf("insert product: %w", err)
		}
		p.Images = []domain.Image{}
		return nil
	})
}

// GetByID retrieves a product with its category and images.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Brand, &p.Price, &p.Inventory, &p.Description,
		&p.Category.ID, &p.Category.Name, &p.Category.Slug, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	byProduct, err := r.loadImages(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	p.Images = byProduct[id]
	if p.Images == nil {
		p.Images = []domain.Image{}
	}
	return &p, nil
}

// List returns products matching filter, oldest first. Limit and Offset
// apply only when Limit is positive.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Name != "" {
		args = append(args, filter.Name)
		conditions = append(conditions, fmt.Sprintf("LOWER(p.name) = LOWER($%d)", len(args)))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		conditions = append(conditions, fmt.Sprintf("LOWER(p.brand) = LOWER($%d)", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) = LOWER($%d)", len(args)))
	}

	var query strings.Builder
	query.WriteString(productSelect)
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY p.id ASC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		fmt.Fprintf(&query, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	ids := []int64{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Price, &p.Inventory, &p.Description,
			&p.Category.ID, &p.Category.Name, &p.Category.Slug, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	byProduct, err := r.loadImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Images = byProduct[products[i].ID]
		if products[i].Images == nil {
			products[i].Images = []domain.Image{}
		}
	}
	return products, nil
}

// Update replaces a product's fields.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateProduct", "UPDATE products")
	defer func() { end(err) }()

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := ensureCategory(ctx, tx, &p.Category); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, `
			UPDATE products
			SET name = $1, brand = $2, price = $3, inventory = $4, description = $5,
			    category_id = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING updated_at`,
			p.Name, p.Brand, p.Price, p.Inventory, p.Description, p.Category.ID, p.ID,
		).Scan(&p.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("Product", p.ID)
		}
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("Product", "name and brand", p.Name+" "+p.Brand)
			}
			return fmt.Errorf("update product %d: %w", p.ID, err)
		}
		return nil
	})
}

// Delete removes a product and every image it owns, unlinking their large
// objects, in one transaction.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteProduct", "DELETE FROM products")
	defer func() { end(err) }()

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("Product", id)
		}
		if err != nil {
			return fmt.Errorf("lock product %d: %w", id, err)
		}

		if _, err := tx.Exec(ctx, `SELECT lo_unlink(data) FROM images WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("unlink images of product %d: %w", id, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM images WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("delete images of product %d: %w", id, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete product %d: %w", id, err)
		}
		return nil
	})
}

func (r *ProductRepository) loadImages(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+imageColumns+` FROM images WHERE product_id = ANY($1) ORDER BY product_id, id ASC`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load product images: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.Image, len(productIDs))
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(
			&img.ID, &img.FileName, &img.FileType, &img.Size, &img.OID,
			&img.DownloadURL, &img.ProductID, &img.CreatedAt, &img.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		out[img.ProductID] = append(out[img.ProductID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image rows: %w", err)
	}
	return out, nil
}

// ensureCategory resolves c by slug, creating it when it does not exist,
// and fills in its id and stored name.
func ensureCategory(ctx context.Context, tx pgx.Tx, c *domain.Category) error {
	c.Slug = slug.Generate(c.Name)
	if c.Slug == "" {
		return apperrors.InvalidInput("category name must contain letters or digits")
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO categories (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, name`,
		c.Name, c.Slug,
	).Scan(&c.ID, &c.Name); err != nil {
		return fmt.Errorf("resolve category %q: %w", c.Name, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
