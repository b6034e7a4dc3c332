package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DailySalesRow is one civil day of aggregated sales. Amounts come back as
// text so callers can parse them into decimals without precision loss.
type DailySalesRow struct {
	SaleDate     time.Time
	TicketCount  int64
	GrossRevenue string
}

// PaymentSummaryRow is the ticket count and revenue for one payment method.
type PaymentSummaryRow struct {
	PaymentMethod string
	TicketCount   int64
	TotalAmount   string
}

// GetDailySales aggregates settled sales per Santiago civil day. Returned
// sales are still included at their gross value here; net-of-returns figures
// come from the rollup engine, not this report.
func (s *Store) GetDailySales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]DailySalesRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			date_trunc('day', created_at AT TIME ZONE 'America/Santiago')::date AS sale_date,
			COUNT(*) AS ticket_count,
			COALESCE(SUM(total), 0)::text AS gross_revenue
		FROM sales
		WHERE store_id = $1
		  AND created_at >= $2 AND created_at < $3
		  AND status <> 'PENDING'
		GROUP BY sale_date
		ORDER BY sale_date
	`, storeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]DailySalesRow, 0, 31)
	for rows.Next() {
		var row DailySalesRow
		if err := rows.Scan(&row.SaleDate, &row.TicketCount, &row.GrossRevenue); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetPaymentSummary aggregates settled sales per payment method.
func (s *Store) GetPaymentSummary(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]PaymentSummaryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			payment_method,
			COUNT(*) AS ticket_count,
			COALESCE(SUM(total), 0)::text AS total_amount
		FROM sales
		WHERE store_id = $1
		  AND created_at >= $2 AND created_at < $3
		  AND status <> 'PENDING'
		GROUP BY payment_method
		ORDER BY payment_method
	`, storeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]PaymentSummaryRow, 0, 3)
	for rows.Next() {
		var row PaymentSummaryRow
		if err := rows.Scan(&row.PaymentMethod, &row.TicketCount, &row.TotalAmount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
