package authz

import (
	"context"
	"fmt"

	"bazaar/internal/store"

	"go.uber.org/zap"
)

// GrantStore is the mutable side of the permission store.
type GrantStore interface {
	GrantSource
	ListAll(ctx context.Context) ([]store.Permission, error)
	Get(ctx context.Context, id int64) (*store.Permission, error)
	Assign(ctx context.Context, adminID, permissionID int64) (*store.PermissionGrant, bool, error)
	Revoke(ctx context.Context, adminID, permissionID int64) error
}

// AuditRecorder appends privileged-action entries.
type AuditRecorder interface {
	Append(ctx context.Context, entry *store.AuditEntry) error
}

// GrantManager owns permission grant mutations and their audit trail.
type GrantManager struct {
	perms  GrantStore
	audit  AuditRecorder
	logger *zap.SugaredLogger
}

func NewGrantManager(perms GrantStore, audit AuditRecorder, logger *zap.SugaredLogger) *GrantManager {
	return &GrantManager{perms: perms, audit: audit, logger: logger}
}

func (m *GrantManager) ListPermissions(ctx context.Context) ([]store.Permission, error) {
	return m.perms.ListAll(ctx)
}

func (m *GrantManager) GrantsFor(ctx context.Context, adminID int64) ([]store.Permission, error) {
	return m.perms.GrantsFor(ctx, adminID)
}

// Assign grants the permission to the admin. Assigning an existing pair is
// idempotent: the stored grant comes back and no audit entry is written.
func (m *GrantManager) Assign(ctx context.Context, actor *Subject, adminID, permissionID int64) (*store.PermissionGrant, bool, error) {
	perm, err := m.perms.Get(ctx, permissionID)
	if err != nil {
		return nil, false, err
	}

	grant, created, err := m.perms.Assign(ctx, adminID, permissionID)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return grant, false, nil
	}

	entry := &store.AuditEntry{
		Action:      store.AuditPermissionAssigned,
		AdminID:     actor.ID,
		EntityType:  "permission_grant",
		EntityID:    adminID,
		NewValues:   map[string]any{"permission": perm.Name},
		Description: fmt.Sprintf("granted %s to admin %d", perm.Name, adminID),
	}
	if err := m.audit.Append(ctx, entry); err != nil {
		return nil, false, err
	}

	m.logger.Infow("permission granted", "permission", perm.Name, "admin_id", adminID, "actor_id", actor.ID)
	return grant, true, nil
}

// Revoke removes the grant pair and records the revocation. Revoking an
// absent pair does not fail.
func (m *GrantManager) Revoke(ctx context.Context, actor *Subject, adminID, permissionID int64) error {
	perm, err := m.perms.Get(ctx, permissionID)
	if err != nil {
		return err
	}

	if err := m.perms.Revoke(ctx, adminID, permissionID); err != nil {
		return err
	}

	entry := &store.AuditEntry{
		Action:      store.AuditPermissionRevoked,
		AdminID:     actor.ID,
		EntityType:  "permission_grant",
		EntityID:    adminID,
		OldValues:   map[string]any{"permission": perm.Name},
		Description: fmt.Sprintf("revoked %s from admin %d", perm.Name, adminID),
	}
	if err := m.audit.Append(ctx, entry); err != nil {
		return err
	}

	m.logger.Infow("permission revoked", "permission", perm.Name, "admin_id", adminID, "actor_id", actor.ID)
	return nil
}
