package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fasterr/marketplace/internal/domain"
)

// PostgresCatalog implements domain.CatalogMirror over the mirror database.
// The images column holds a JSON-encoded string at rest and is decoded on
// read; price and created_at are coerced from their stored representations.
type PostgresCatalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCatalog creates a mirror catalog repository
func NewPostgresCatalog(db *sql.DB, logger *slog.Logger) *PostgresCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCatalog{db: db, logger: logger}
}

const productColumns = `id, title, price, description, condition, category, image, images, seller_id, seller_name, created_at, location, status`

// List returns every mirrored product ordered by creation time descending
func (r *PostgresCatalog) List() ([]domain.Product, error) {
	rows, err := r.db.Query(`SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			r.logger.Error("failed to scan product row", slog.String("error", err.Error()))
			continue
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// GetByID returns one product or domain.ErrNotFound
func (r *PostgresCatalog) GetByID(id string) (domain.Product, error) {
	row := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// Create inserts a product and returns its generated id. The caller supplies
// the payload sans id/createdAt/status; those are assigned here.
func (r *PostgresCatalog) Create(p domain.Product) (string, error) {
	p.ID = domain.NewID()
	p.CreatedAt = nowMillis()
	p.Status = domain.StatusActive
	if len(p.Images) == 0 && p.Image != "" {
		p.Images = []string{p.Image}
	}
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("invalid product: %w", err)
	}

	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Title, p.Price, p.Description, string(p.Condition), string(p.Category),
		p.Image, string(imagesJSON), p.SellerID, p.SellerName, p.CreatedAt, p.Location, p.Status,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.Debug("mirror product created", slog.String("product_id", p.ID))
	return p.ID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scan decodes one stored row, applying the decode-on-read contract for the
// images column and numeric coercion for price and created_at.
func (r *PostgresCatalog) scan(row rowScanner) (domain.Product, error) {
	var (
		p         domain.Product
		price     sql.NullFloat64
		createdAt sql.NullInt64
		imagesRaw sql.NullString
		condition string
		category  string
	)
	err := row.Scan(
		&p.ID, &p.Title, &price, &p.Description, &condition, &category,
		&p.Image, &imagesRaw, &p.SellerID, &p.SellerName, &createdAt, &p.Location, &p.Status,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.Price = price.Float64
	p.CreatedAt = createdAt.Int64
	p.Condition = domain.Condition(condition)
	p.Category = domain.Category(category)

	if imagesRaw.Valid && imagesRaw.String != "" {
		if err := json.Unmarshal([]byte(imagesRaw.String), &p.Images); err != nil {
			// A corrupt images column degrades to the primary image only.
			r.logger.Warn("failed to decode images column",
				slog.String("product_id", p.ID),
				slog.String("error", err.Error()),
			)
			p.Images = nil
		}
	}
	if len(p.Images) == 0 && p.Image != "" {
		p.Images = []string{p.Image}
	}
	return p, nil
}
