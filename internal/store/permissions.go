package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Permission is a fine-grained capability named "resource.action".
type Permission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// PermissionGrant joins an admin account to a permission. The pair is unique.
type PermissionGrant struct {
	AdminID      int64     `json:"admin_id"`
	PermissionID int64     `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type PermissionsStore struct {
	db *pgxpool.Pool
}

func (s *PermissionsStore) ListAll(ctx context.Context) ([]Permission, error) {
	query := `
		SELECT id, name, resource, action, created_at
		FROM permissions
		ORDER BY resource ASC, action ASC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	defer rows.Close()

	return collectPermissions(rows)
}

func (s *PermissionsStore) Get(ctx context.Context, id int64) (*Permission, error) {
	query := `SELECT id, name, resource, action, created_at FROM permissions WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var p Permission
	err := s.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return &p, nil
}

func (s *PermissionsStore) GrantsFor(ctx context.Context, adminID int64) ([]Permission, error) {
	query := `
		SELECT p.id, p.name, p.resource, p.action, p.created_at
		FROM permissions p
		JOIN admin_permissions ap ON ap.permission_id = p.id
		WHERE ap.admin_id = $1
		ORDER BY p.resource ASC, p.action ASC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grants: %w", err)
	}
	defer rows.Close()

	return collectPermissions(rows)
}

// Assign creates the grant pair if missing. The returned bool reports whether
// a new row was written; re-assigning an existing grant returns the stored
// row untouched so callers can skip the audit entry.
func (s *PermissionsStore) Assign(ctx context.Context, adminID, permissionID int64) (*PermissionGrant, bool, error) {
	insert := `
		INSERT INTO admin_permissions (admin_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (admin_id, permission_id) DO NOTHING
		RETURNING admin_id, permission_id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var grant PermissionGrant
	err := s.db.QueryRow(ctx, insert, adminID, permissionID).Scan(
		&grant.AdminID, &grant.PermissionID, &grant.CreatedAt,
	)
	if err == nil {
		return &grant, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to assign permission: %w", err)
	}

	// Conflict path: the pair already exists, return it as-is.
	query := `
		SELECT admin_id, permission_id, created_at
		FROM admin_permissions
		WHERE admin_id = $1 AND permission_id = $2
	`
	err = s.db.QueryRow(ctx, query, adminID, permissionID).Scan(
		&grant.AdminID, &grant.PermissionID, &grant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("failed to fetch existing grant: %w", err)
	}
	return &grant, false, nil
}

// Revoke deletes the grant pair. Revoking an absent grant is a no-op.
func (s *PermissionsStore) Revoke(ctx context.Context, adminID, permissionID int64) error {
	query := `DELETE FROM admin_permissions WHERE admin_id = $1 AND permission_id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, adminID, permissionID)
	if err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}
	return nil
}

func collectPermissions(rows pgx.Rows) ([]Permission, error) {
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return perms, nil
}
