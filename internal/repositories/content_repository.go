package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"live-service/internal/models"
)

// ContentRepository reads content eligibility for the sample cache loader.
type ContentRepository interface {
	ListEligibleIDs(ctx context.Context, kind models.ContentKind, limit int) ([]string, error)
}

// ContentRepo is a sqlx-backed repository.
type ContentRepo struct {
	db *sqlx.DB
}

// NewContentRepo constructs ContentRepo.
func NewContentRepo(db *sqlx.DB) *ContentRepo {
	return &ContentRepo{db: db}
}

// ListEligibleIDs returns ids of non-banned items, most recent first.
func (r *ContentRepo) ListEligibleIDs(ctx context.Context, kind models.ContentKind, limit int) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM content_items
        WHERE kind=$1 AND banned=FALSE ORDER BY created_at DESC LIMIT $2`, string(kind), limit)
	return ids, err
}
