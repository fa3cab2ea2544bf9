package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pricing"
	"github.com/shoplite/pricing-service/internal/product/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // caller maps to not-found
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindByNameCategory(ctx context.Context, name, category string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p,
		`SELECT * FROM products WHERE name = $1 AND category = $2`, name, category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var items []model.Product
	var count int

	conditions := []string{"is_active = TRUE"}
	args := map[string]interface{}{}

	if f.Name != "" {
		conditions = append(conditions, "name = :name")
		args["name"] = f.Name
	}
	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM products" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM products" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListByInventoryLevel(ctx context.Context, level pricing.InventoryLevel) ([]model.Product, error) {
	var items []model.Product
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM products WHERE is_active = TRUE AND inventory_level = $1`, string(level))
	return items, err
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, category, default_price, competitor_price, dynamic_price,
            price_floor, total_inventory, total_reserved,
            current_demand_count, previous_demand_count,
            inventory_level, demand_level,
            dynamic_price_expiry, dynamic_price_duration,
            is_active, created_at, updated_at
        )
        VALUES (
            :id, :name, :category, :default_price, :competitor_price, :dynamic_price,
            :price_floor, :total_inventory, :total_reserved,
            :current_demand_count, :previous_demand_count,
            :inventory_level, :demand_level,
            :dynamic_price_expiry, :dynamic_price_duration,
            :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Retire(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, model.ErrProductNotFound)
}

func (r *PGRepository) UpdateCompetitorPrice(ctx context.Context, id string, price decimal.Decimal) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET competitor_price = $2, updated_at = NOW() WHERE id = $1`, id, price)
	if err != nil {
		return err
	}
	return requireRow(res, model.ErrProductNotFound)
}

// Reserve increments total_reserved only when the result stays within
// capacity. The guard lives in the WHERE clause so two racing callers can
// never jointly overflow: the row version one of them sees no longer
// satisfies the predicate.
func (r *PGRepository) Reserve(ctx context.Context, id string, qty int64) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	query := `
        UPDATE products
        SET total_reserved = total_reserved + $2, updated_at = NOW()
        WHERE id = $1 AND is_active = TRUE
          AND total_reserved + $2 <= total_inventory
    `
	res, err := r.DB.ExecContext(ctx, query, id, qty)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrProductNotFound
		}
		return &model.InsufficientInventoryError{ProductID: id}
	}
	return nil
}

// Release is the mirror image: it refuses to underflow. An underflow means a
// reservation was lost upstream, so the error is surfaced, never absorbed.
func (r *PGRepository) Release(ctx context.Context, id string, qty int64) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	query := `
        UPDATE products
        SET total_reserved = total_reserved - $2, updated_at = NOW()
        WHERE id = $1 AND total_reserved - $2 >= 0
    `
	res, err := r.DB.ExecContext(ctx, query, id, qty)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Releases must work against retired products too, so the
		// existence probe ignores is_active.
		var count int
		if err := r.DB.GetContext(ctx, &count,
			`SELECT count(*) FROM products WHERE id = $1`, id); err != nil {
			return err
		}
		if count == 0 {
			return model.ErrProductNotFound
		}
		return model.ErrInvalidRelease
	}
	return nil
}

func (r *PGRepository) BumpDemand(ctx context.Context, id string, amount int64) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE products
        SET current_demand_count = current_demand_count + $2, updated_at = NOW()
        WHERE id = $1`, id, amount)
	if err != nil {
		return err
	}
	return requireRow(res, model.ErrProductNotFound)
}

func (r *PGRepository) RollDemandWindows(ctx context.Context, policy pricing.DemandWindowPolicy) error {
	query := `
        UPDATE products
        SET previous_demand_count = GREATEST(current_demand_count, previous_demand_count),
            updated_at = NOW()
        WHERE is_active = TRUE
    `
	if policy == pricing.WindowDecay {
		query = `
        UPDATE products
        SET previous_demand_count = GREATEST(current_demand_count, previous_demand_count),
            current_demand_count = 0,
            updated_at = NOW()
        WHERE is_active = TRUE
    `
	}
	_, err := r.DB.ExecContext(ctx, query)
	return err
}

func (r *PGRepository) UpdateLevels(ctx context.Context, id string, inv pricing.InventoryLevel, dem pricing.DemandLevel) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE products
        SET inventory_level = $2, demand_level = $3, updated_at = NOW()
        WHERE id = $1`, id, string(inv), string(dem))
	if err != nil {
		return err
	}
	return requireRow(res, model.ErrProductNotFound)
}

func (r *PGRepository) UpdatePricing(ctx context.Context, id string, inv pricing.InventoryLevel, dem pricing.DemandLevel, price decimal.Decimal, expiry time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE products
        SET inventory_level = $2, demand_level = $3,
            dynamic_price = $4, dynamic_price_expiry = $5, updated_at = NOW()
        WHERE id = $1`, id, string(inv), string(dem), price, expiry)
	if err != nil {
		return err
	}
	return requireRow(res, model.ErrProductNotFound)
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (id, product_id, order_id, movement_type, change, created_at)
        VALUES (:id, :product_id, :order_id, :movement_type, :change, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) LogPrice(ctx context.Context, l *model.PriceLog) error {
	query := `
        INSERT INTO price_logs (id, product_id, price, source, created_at)
        VALUES (:id, :product_id, :price, :source, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, l)
	return err
}

func (r *PGRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count,
		`SELECT count(*) FROM products WHERE id = $1 AND is_active = TRUE`, id); err != nil {
		return false, err
	}
	return count > 0, nil
}

func requireRow(res sql.Result, missing error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return missing
	}
	return nil
}
