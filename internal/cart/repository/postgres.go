package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shoplite/pricing-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	var c model.Cart
	err := r.DB.GetContext(ctx, &c, `SELECT * FROM carts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	err = r.DB.SelectContext(ctx, &c.Items,
		`SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Create(ctx context.Context, c *model.Cart) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO carts (id, created_at, updated_at)
        VALUES (:id, :created_at, :updated_at)`, c)
	return err
}

func (r *PGRepository) UpsertItem(ctx context.Context, cartID, productID string, quantity int64) error {
	query := `
        INSERT INTO cart_items (id, cart_id, product_id, quantity)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (cart_id, product_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
    `
	_, err := r.DB.ExecContext(ctx, query, uuid.New().String(), cartID, productID, quantity)
	return err
}

func (r *PGRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}
