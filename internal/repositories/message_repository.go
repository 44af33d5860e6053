package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"live-service/internal/models"
)

// MessageRepository persists public chat messages.
type MessageRepository interface {
	Create(ctx context.Context, user models.Participant, text string) (models.ChatMessage, error)
	ListRecent(ctx context.Context, limit int) ([]models.ChatMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

type chatMessageRow struct {
	ID           string    `db:"id"`
	Text         string    `db:"text"`
	UserID       string    `db:"user_id"`
	UserName     string    `db:"user_name"`
	UserAvatar   string    `db:"user_avatar"`
	UserUsername string    `db:"user_username"`
	UserGuest    bool      `db:"user_guest"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r chatMessageRow) toModel() models.ChatMessage {
	return models.ChatMessage{
		ID:        r.ID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
		User: models.Participant{
			ID:       r.UserID,
			Name:     r.UserName,
			Avatar:   r.UserAvatar,
			Username: r.UserUsername,
			Guest:    r.UserGuest,
		},
	}
}

// Create stores a chat message with a sender snapshot.
func (r *MessageRepo) Create(ctx context.Context, user models.Participant, text string) (models.ChatMessage, error) {
	row := chatMessageRow{}
	err := r.db.QueryRowxContext(ctx, `INSERT INTO chat_messages (id, text, user_id, user_name, user_avatar, user_username, user_guest)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, text, user_id, user_name, user_avatar, user_username, user_guest, created_at`,
		uuid.NewString(), text, user.ID, user.Name, user.Avatar, user.Username, user.Guest).
		StructScan(&row)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return row.toModel(), nil
}

// ListRecent returns the newest messages in chronological order.
func (r *MessageRepo) ListRecent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	var rows []chatMessageRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, text, user_id, user_name, user_avatar, user_username, user_guest, created_at
        FROM chat_messages ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}

	msgs := make([]models.ChatMessage, len(rows))
	for i, row := range rows {
		msgs[len(rows)-1-i] = row.toModel()
	}
	return msgs, nil
}
