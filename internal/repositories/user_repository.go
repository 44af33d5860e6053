package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"live-service/internal/models"
)

// UserRepository looks up known accounts. Absent users resolve to nil, not
// an error, so callers can distinguish "not found" from infrastructure
// failure.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	FindAccount(ctx context.Context, id string) (*models.Account, error)
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindByID returns the persisted-safe projection of a user.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	var ident models.Identity
	err := r.db.GetContext(ctx, &ident, `SELECT id, name, avatar, username FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

// FindAccount returns the full user row, including the banned flag.
func (r *UserRepo) FindAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT id, name, avatar, username, email, banned FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
