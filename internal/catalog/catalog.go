// Package catalog holds the read-only product lookup table.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a product identifier is not in the catalog.
var ErrNotFound = errors.New("product not found")

// Product is a tradable commodity.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Defaults returns the built-in product list in display order.
func Defaults() []Product {
	return []Product{
		{ID: "basmati-rice", Name: "Basmati Rice", Category: "Grains"},
		{ID: "foxtail-millet", Name: "Foxtail Millet", Category: "Millets"},
		{ID: "chickpeas", Name: "Chickpeas", Category: "Pulses"},
		{ID: "mustard-oil", Name: "Mustard Oil", Category: "Oils"},
		{ID: "groundnut", Name: "Groundnut", Category: "Nuts"},
	}
}

// Repository reads products from the products table.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns every product in display order.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category
		FROM products
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Get returns the product with the given identifier or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `SELECT id, name, category FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("query product %q: %w", id, err)
	}
	return p, nil
}

// Index returns the catalog keyed by product identifier.
func (r *Repository) Index(ctx context.Context) (map[string]Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index, nil
}
