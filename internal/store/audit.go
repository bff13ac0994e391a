package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit action names for privileged operations.
const (
	AuditAdApproved         = "AD_APPROVED"
	AuditAdRejected         = "AD_REJECTED"
	AuditAdEdited           = "AD_EDITED"
	AuditAdDeleted          = "AD_DELETED"
	AuditPermissionAssigned = "PERMISSION_ASSIGNED"
	AuditPermissionRevoked  = "PERMISSION_REVOKED"
)

// AuditEntry is an append-only record of a privileged action. Entries are
// never updated or deleted.
type AuditEntry struct {
	ID          int64          `json:"id"`
	Action      string         `json:"action"`
	AdminID     int64          `json:"admin_id"`
	EntityType  string         `json:"entity_type"`
	EntityID    int64          `json:"entity_id"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

type AuditStore struct {
	db *pgxpool.Pool
}

// Append writes the entry as supplied. Semantic coherence of the
// action/entity pairing is the caller's responsibility.
func (s *AuditStore) Append(ctx context.Context, entry *AuditEntry) error {
	query := `
		INSERT INTO audit_logs (action, admin_id, entity_type, entity_id, old_values, new_values, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		entry.Action, entry.AdminID, entry.EntityType, entry.EntityID,
		entry.OldValues, entry.NewValues, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]AuditEntry, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var totalCount int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := `
		SELECT id, action, admin_id, entity_type, entity_id, old_values, new_values, description, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		err := rows.Scan(
			&e.ID, &e.Action, &e.AdminID, &e.EntityType, &e.EntityID,
			&e.OldValues, &e.NewValues, &e.Description, &e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over rows: %w", err)
	}

	return entries, totalCount, nil
}
