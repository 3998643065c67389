package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) GetAllLocations() ([]*domain.Location, error) {
	query := `
		SELECT id, name, address, created_at, version FROM locations
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		location := &domain.Location{}
		if err := rows.Scan(&location.ID, &location.Name, &location.Address, &location.CreatedAt, &location.Version); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *Repository) GetLocationByID(id int64) (*domain.Location, error) {
	query := `
		SELECT name, address, created_at, version FROM locations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	location := &domain.Location{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&location.Name, &location.Address, &location.CreatedAt, &location.Version); err != nil {
		return nil, err
	}

	return location, nil
}

func (r *Repository) CreateLocation(location *domain.Location) error {
	query := `
		INSERT INTO locations (name, address)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, location.Name, location.Address).Scan(&location.ID, &location.CreatedAt, &location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateLocation(location *domain.Location) error {
	query := `
		UPDATE locations
		SET
			name = $1,
			address = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{location.Name, location.Address, location.ID, location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteLocation(id int64) error {
	query := `
		DELETE FROM locations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
