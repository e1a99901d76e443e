// internal/repository/homes.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"placement-workers/internal/models"
)

type HomeRepository struct {
	db *sql.DB
}

func NewHomeRepository(db *sql.DB) *HomeRepository {
	return &HomeRepository{db: db}
}

// ListAll returns every home ordered by name then id, so ranking ties are
// stable between calls.
func (r *HomeRepository) ListAll(ctx context.Context) ([]models.Home, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, location, free_beds, constraints, capabilities, is_registered
		FROM homes ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list homes: %w", err)
	}
	defer rows.Close()

	homes := make([]models.Home, 0)
	for rows.Next() {
		var (
			home                      models.Home
			constraints, capabilities []byte
			registered                sql.NullBool
		)
		if err := rows.Scan(&home.ID, &home.Name, &home.Location, &home.FreeBeds,
			&constraints, &capabilities, &registered); err != nil {
			return nil, fmt.Errorf("scan home: %w", err)
		}
		if err := decodeJSONB("constraints", constraints, &home.Constraints); err != nil {
			return nil, fmt.Errorf("home %s: %w", home.ID, err)
		}
		if err := decodeJSONB("capabilities", capabilities, &home.Capabilities); err != nil {
			return nil, fmt.Errorf("home %s: %w", home.ID, err)
		}
		if registered.Valid {
			v := registered.Bool
			home.IsRegistered = &v
		}
		homes = append(homes, home)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list homes: %w", err)
	}

	return homes, nil
}

// HomeProfileUpdate carries the fields a home manager may change. Nil fields
// are left as stored.
type HomeProfileUpdate struct {
	FreeBeds     *int
	Constraints  *models.HomeConstraints
	Capabilities *models.HomeCapabilities
}

func (r *HomeRepository) UpdateProfile(ctx context.Context, homeID string, update HomeProfileUpdate) error {
	var freeBeds interface{}
	if update.FreeBeds != nil {
		freeBeds = *update.FreeBeds
	}

	var constraints, capabilities interface{}
	var err error
	if update.Constraints != nil {
		if constraints, err = encodeJSONB(update.Constraints); err != nil {
			return fmt.Errorf("encode constraints: %w", err)
		}
	}
	if update.Capabilities != nil {
		if capabilities, err = encodeJSONB(update.Capabilities); err != nil {
			return fmt.Errorf("encode capabilities: %w", err)
		}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE homes SET
			free_beds    = COALESCE($2, free_beds),
			constraints  = COALESCE($3::jsonb, constraints),
			capabilities = COALESCE($4::jsonb, capabilities)
		WHERE id = $1`, homeID, freeBeds, constraints, capabilities)
	if err != nil {
		return fmt.Errorf("update home %s: %w", homeID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update home %s: %w", homeID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrHomeNotFound, homeID)
	}
	return nil
}
