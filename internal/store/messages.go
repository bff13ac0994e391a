package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is a buyer/seller conversation row attached to an ad. System
// messages (moderation notices) carry the acting admin as sender.
type Message struct {
	ID          int64      `json:"id"`
	AdID        int64      `json:"ad_id"`
	SenderID    int64      `json:"sender_id"`
	RecipientID int64      `json:"recipient_id"`
	Body        string     `json:"body"`
	System      bool       `json:"system"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type MessagesStore struct {
	db *pgxpool.Pool
}

func (s *MessagesStore) Create(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (ad_id, sender_id, recipient_id, body, system)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		msg.AdID, msg.SenderID, msg.RecipientID, msg.Body, msg.System,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *MessagesStore) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]Message, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var totalCount int
	countQuery := `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 OR sender_id = $1`
	if err := s.db.QueryRow(ctx, countQuery, userID).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query := `
		SELECT id, ad_id, sender_id, recipient_id, body, system, read_at, created_at
		FROM messages
		WHERE recipient_id = $1 OR sender_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.AdID, &m.SenderID, &m.RecipientID, &m.Body, &m.System, &m.ReadAt, &m.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over rows: %w", err)
	}

	return msgs, totalCount, nil
}

// ListForAd returns the conversation on one ad restricted to messages the
// user participates in.
func (s *MessagesStore) ListForAd(ctx context.Context, adID, userID int64) ([]Message, error) {
	query := `
		SELECT id, ad_id, sender_id, recipient_id, body, system, read_at, created_at
		FROM messages
		WHERE ad_id = $1 AND (recipient_id = $2 OR sender_id = $2)
		ORDER BY created_at ASC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, adID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ad messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.AdID, &m.SenderID, &m.RecipientID, &m.Body, &m.System, &m.ReadAt, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return msgs, nil
}
