package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/shoplite/pricing-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindByCartID(ctx context.Context, cartID string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE cart_id = $1`, cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
        INSERT INTO orders (id, cart_id, status, total_price, total_quantity, created_at, updated_at)
        VALUES (:id, :cart_id, :status, :total_price, :total_quantity, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, orderQuery, o); err != nil {
		// The unique index on cart_id closes the check-then-create race:
		// two concurrent placements for one cart cannot both commit.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (id, order_id, product_id, quantity, price)
        VALUES (:id, :order_id, :product_id, :quantity, :price)
    `
	for i := range o.Items {
		if _, err := tx.NamedExecContext(ctx, itemQuery, &o.Items[i]); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// MarkCancelled is a conditional update, the same discipline as the unique
// cart_id index on Create: the status check and the write are one statement,
// so two racing cancellations cannot both pass the guard.
func (r *PGRepository) MarkCancelled(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE orders SET status = $2, updated_at = NOW()
        WHERE id = $1 AND status <> $2`, id, model.OrderCancelled)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var count int
		if err := r.DB.GetContext(ctx, &count,
			`SELECT count(*) FROM orders WHERE id = $1`, id); err != nil {
			return err
		}
		if count == 0 {
			return model.ErrOrderNotFound
		}
		return model.ErrAlreadyCancelled
	}
	return nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func (r *PGRepository) loadItems(ctx context.Context, o *model.Order) error {
	return r.DB.SelectContext(ctx, &o.Items,
		`SELECT * FROM order_items WHERE order_id = $1 ORDER BY id`, o.ID)
}
