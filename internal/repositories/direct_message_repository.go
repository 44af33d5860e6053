package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"live-service/internal/models"
)

// DirectMessageRepository persists private messages between two accounts.
type DirectMessageRepository interface {
	Create(ctx context.Context, sender, recipient models.Identity, text string) (models.DirectMessage, error)
}

// DirectMessageRepo is a sqlx-backed repository.
type DirectMessageRepo struct {
	db *sqlx.DB
}

// NewDirectMessageRepo constructs DirectMessageRepo.
func NewDirectMessageRepo(db *sqlx.DB) *DirectMessageRepo {
	return &DirectMessageRepo{db: db}
}

// Create stores a direct message with sender and recipient snapshots.
func (r *DirectMessageRepo) Create(ctx context.Context, sender, recipient models.Identity, text string) (models.DirectMessage, error) {
	var id string
	var createdAt time.Time
	err := r.db.QueryRowxContext(ctx, `INSERT INTO direct_messages
        (id, text, sender_id, sender_name, sender_avatar, sender_username,
         recipient_id, recipient_name, recipient_avatar, recipient_username)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at`,
		uuid.NewString(), text,
		sender.ID, sender.Name, sender.Avatar, sender.Username,
		recipient.ID, recipient.Name, recipient.Avatar, recipient.Username).
		Scan(&id, &createdAt)
	if err != nil {
		return models.DirectMessage{}, err
	}
	return models.DirectMessage{
		ID:        id,
		Text:      text,
		CreatedAt: createdAt,
		Sender:    sender,
		Recipient: recipient,
	}, nil
}
