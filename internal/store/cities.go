package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type City struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Region    *string   `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CitiesStore struct {
	db *pgxpool.Pool
}

func (s *CitiesStore) Create(ctx context.Context, c *City) error {
	query := `INSERT INTO cities (name, region) VALUES ($1, $2) RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query, c.Name, c.Region).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create city: %w", err)
	}
	return nil
}

func (s *CitiesStore) GetByID(ctx context.Context, id int64) (*City, error) {
	query := `SELECT id, name, region, created_at FROM cities WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var c City
	err := s.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Region, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return &c, nil
}

func (s *CitiesStore) List(ctx context.Context) ([]City, error) {
	query := `SELECT id, name, region, created_at FROM cities ORDER BY name ASC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.Region, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return cities, nil
}

func (s *CitiesStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM cities WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete city: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
