package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CreateMenuItem inserts a new catalog entry
func (p *Postgres) CreateMenuItem(ctx context.Context, it MenuItem) (MenuItem, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price_cents, image_url, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, price_cents, image_url, available, created_at, updated_at
	`, it.Name, it.Description, it.PriceCents, it.ImageURL, it.Available)
	return scanMenuItem(row)
}

// ListMenu returns the whole catalog, available items first
func (p *Postgres) ListMenu(ctx context.Context) ([]MenuItem, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, description, price_cents, image_url, available, created_at, updated_at
		FROM menu_items
		ORDER BY available DESC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetMenuItem fetches one catalog entry by ID
func (p *Postgres) GetMenuItem(ctx context.Context, id string) (MenuItem, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, name, description, price_cents, image_url, available, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, id)
	it, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return MenuItem{}, errors.New("menu item not found")
	}
	return it, err
}

// UpdateMenuItem overwrites a catalog entry's editable fields
func (p *Postgres) UpdateMenuItem(ctx context.Context, it MenuItem) (MenuItem, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, price_cents = $4, image_url = $5, available = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, price_cents, image_url, available, created_at, updated_at
	`, it.ID, it.Name, it.Description, it.PriceCents, it.ImageURL, it.Available)
	out, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return MenuItem{}, errors.New("menu item not found")
	}
	return out, err
}

// DeleteMenuItem removes a catalog entry
func (p *Postgres) DeleteMenuItem(ctx context.Context, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.New("menu item not found")
	}
	return nil
}

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var it MenuItem
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.PriceCents, &it.ImageURL, &it.Available, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return MenuItem{}, err
	}
	return it, nil
}
