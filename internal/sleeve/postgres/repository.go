// Package postgres reads and imports the sleeve catalog in PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/sleeveselector/internal/sleeve"
)

// Repository provides Postgres-backed access to the sleeve_products table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ sleeve.Source = (*Repository)(nil)

// Products implements sleeve.Source, returning products in import order.
func (r *Repository) Products(ctx context.Context) ([]sleeve.Product, error) {
	const query = `SELECT model, length_in, girth_in, girth_category, url
        FROM sleeve_products ORDER BY position, model`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sleeve products: %w", err)
	}
	defer rows.Close()

	products := make([]sleeve.Product, 0)
	for rows.Next() {
		var p sleeve.Product
		if err := rows.Scan(&p.Model, &p.Length, &p.Girth, &p.GirthCategory, &p.URL); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// Import replaces the catalog with products inside a single transaction.
func (r *Repository) Import(ctx context.Context, products []sleeve.Product) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM sleeve_products`); err != nil {
		return fmt.Errorf("clear sleeve products: %w", err)
	}

	const insert = `INSERT INTO sleeve_products (model, length_in, girth_in, girth_category, url, position, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,now())`

	batch := &pgx.Batch{}
	for i, p := range products {
		batch.Queue(insert, p.Model, p.Length, p.Girth, p.GirthCategory, p.URL, i)
	}
	results := tx.SendBatch(ctx, batch)
	for i := range products {
		if _, err = results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert %s: %w", products[i].Model, err)
		}
	}
	if err = results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
