package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

// GroupRepository manages instructional group records.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByIDForSite fetches a group by ID scoped to a site.
func (r *GroupRepository) FindByIDForSite(ctx context.Context, id, siteID string) (*models.Group, error) {
	const query = `SELECT id, site_id, name, is_tutoring_group, active, created_at, updated_at
        FROM groups WHERE id = $1 AND site_id = $2`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id, siteID); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListBySite returns all groups for a site ordered by name.
func (r *GroupRepository) ListBySite(ctx context.Context, siteID string) ([]models.Group, error) {
	const query = `SELECT id, site_id, name, is_tutoring_group, active, created_at, updated_at
        FROM groups WHERE site_id = $1 ORDER BY name`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, siteID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}
