package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

// StaffRepository manages instructor records.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// FindByIDForSite fetches a staff member by ID scoped to a site.
func (r *StaffRepository) FindByIDForSite(ctx context.Context, id, siteID string) (*models.Staff, error) {
	const query = `SELECT id, site_id, full_name, email, active, created_at, updated_at
        FROM staff WHERE id = $1 AND site_id = $2`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id, siteID); err != nil {
		return nil, err
	}
	return &staff, nil
}
