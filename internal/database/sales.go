package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/domain"
)

// CreateSale inserts a sale and its items in a single transaction.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Sale{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO sales (id, store_id, total, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, sale.ID, sale.StoreID, sale.Total.StringFixed(2), sale.PaymentMethod, sale.Status, sale.CreatedAt).
		Scan(&sale.CreatedAt)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	for _, item := range sale.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, sku, description, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, sale.ID, item.SKU, item.Description, item.Quantity, item.UnitPrice.StringFixed(2))
		if err != nil {
			return domain.Sale{}, fmt.Errorf("insert sale item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

// AttachReturn records a return against a sale and updates the sale status
// in the same transaction. It assumes the caller already validated the
// cancellations against the sale's items.
func (s *Store) AttachReturn(ctx context.Context, saleID uuid.UUID, ret domain.Return, newStatus string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sale_returns (sale_id, reason, note, created_at)
		VALUES ($1, $2, $3, $4)
	`, saleID, ret.Reason, ret.Note, ret.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert return: %w", err)
	}

	for _, c := range ret.Cancellations {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_return_items (id, sale_id, item_id, quantity)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), saleID, c.ItemID, c.Quantity)
		if err != nil {
			return fmt.Errorf("insert return item: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `UPDATE sales SET status = $1 WHERE id = $2`, newStatus, saleID)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// GetSale loads a single sale with its items and return, if any.
func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (domain.Sale, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, store_id, total::text, payment_method, status, created_at
		FROM sales
		WHERE id = $1
	`, id)

	sale, err := scanSale(row)
	if err != nil {
		return domain.Sale{}, err
	}

	sales := []domain.Sale{sale}
	if err := s.loadSaleChildren(ctx, sales); err != nil {
		return domain.Sale{}, err
	}
	return sales[0], nil
}

// ListSales returns all sales created within [from, to) for one store, or
// for every store when storeID is uuid.Nil. Items and returns are loaded so
// the rollup engine can resolve net amounts.
func (s *Store) ListSales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]domain.Sale, error) {
	query := `
		SELECT id, store_id, total::text, payment_method, status, created_at
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
	`
	args := []interface{}{from, to}
	if storeID != uuid.Nil {
		query += ` AND store_id = $3`
		args = append(args, storeID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadSaleChildren(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func scanSale(row pgx.Row) (domain.Sale, error) {
	var sale domain.Sale
	var total string
	err := row.Scan(&sale.ID, &sale.StoreID, &total, &sale.PaymentMethod, &sale.Status, &sale.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Sale{}, ErrNotFound
	}
	if err != nil {
		return domain.Sale{}, err
	}
	sale.Total, err = decimal.NewFromString(total)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("parse sale total: %w", err)
	}
	return sale, nil
}

// loadSaleChildren attaches items and returns to the given sales in place.
func (s *Store) loadSaleChildren(ctx context.Context, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(sales))
	index := make(map[uuid.UUID]*domain.Sale, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
		index[sales[i].ID] = &sales[i]
	}

	itemRows, err := s.pool.Query(ctx, `
		SELECT id, sale_id, sku, description, quantity, unit_price::text
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, id
	`, ids)
	if err != nil {
		return err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.SaleItem
		var saleID uuid.UUID
		var price string
		if err := itemRows.Scan(&item.ID, &saleID, &item.SKU, &item.Description, &item.Quantity, &price); err != nil {
			return err
		}
		item.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("parse item unit price: %w", err)
		}
		if sale, ok := index[saleID]; ok {
			sale.Items = append(sale.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	returnRows, err := s.pool.Query(ctx, `
		SELECT sale_id, reason, note, created_at
		FROM sale_returns
		WHERE sale_id = ANY($1)
	`, ids)
	if err != nil {
		return err
	}
	defer returnRows.Close()

	for returnRows.Next() {
		var saleID uuid.UUID
		var ret domain.Return
		if err := returnRows.Scan(&saleID, &ret.Reason, &ret.Note, &ret.CreatedAt); err != nil {
			return err
		}
		if sale, ok := index[saleID]; ok {
			sale.Return = &ret
		}
	}
	if err := returnRows.Err(); err != nil {
		return err
	}

	cancelRows, err := s.pool.Query(ctx, `
		SELECT sale_id, item_id, quantity
		FROM sale_return_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, id
	`, ids)
	if err != nil {
		return err
	}
	defer cancelRows.Close()

	for cancelRows.Next() {
		var saleID uuid.UUID
		var c domain.ItemCancellation
		if err := cancelRows.Scan(&saleID, &c.ItemID, &c.Quantity); err != nil {
			return err
		}
		if sale, ok := index[saleID]; ok && sale.Return != nil {
			sale.Return.Cancellations = append(sale.Return.Cancellations, c)
		}
	}
	return cancelRows.Err()
}
