package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CreateOrder inserts an order with its item snapshot and computed total
func (p *Postgres) CreateOrder(ctx context.Context, customer string, items []OrderItem) (Order, error) {
	if len(items) == 0 {
		return Order{}, errors.New("order has no items")
	}
	var total int64
	for _, it := range items {
		total += it.PriceCents * int64(it.Quantity)
	}
	blob, err := json.Marshal(items)
	if err != nil {
		return Order{}, err
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO orders (customer, items, total_cents, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, customer, items, total_cents, status, created_at, updated_at
	`, customer, blob, total, OrderPending)
	return scanOrder(row)
}

// ListOrders returns orders newest first
func (p *Postgres) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, customer, items, total_cents, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetOrder fetches one order by ID
func (p *Postgres) GetOrder(ctx context.Context, id string) (Order, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, customer, items, total_cents, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, errors.New("order not found")
	}
	return o, err
}

// UpdateOrderStatus moves an order to a new status
func (p *Postgres) UpdateOrderStatus(ctx context.Context, id, status string) (Order, error) {
	if !ValidOrderStatus(status) {
		return Order{}, errors.New("unknown order status")
	}
	row := p.pool.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, customer, items, total_cents, status, created_at, updated_at
	`, id, status)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, errors.New("order not found")
	}
	return o, err
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var blob []byte
	if err := row.Scan(&o.ID, &o.Customer, &blob, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(blob, &o.Items); err != nil {
		return Order{}, err
	}
	return o, nil
}
