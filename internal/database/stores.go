package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pasos-retail/api/internal/domain"
)

func (s *Store) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, city, address, created_at
		FROM stores
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]domain.Store, 0, 16)
	for rows.Next() {
		var st domain.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.City, &st.Address, &st.CreatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, st)
	}
	return stores, rows.Err()
}

func (s *Store) GetStore(ctx context.Context, id uuid.UUID) (domain.Store, error) {
	var st domain.Store
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, city, address, created_at
		FROM stores
		WHERE id = $1
	`, id).Scan(&st.ID, &st.Name, &st.City, &st.Address, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Store{}, ErrNotFound
	}
	if err != nil {
		return domain.Store{}, err
	}
	return st, nil
}
