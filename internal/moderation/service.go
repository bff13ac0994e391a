package moderation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"bazaar/internal/authz"
	"bazaar/internal/store"

	"go.uber.org/zap"
)

// PermissionChecker answers fine-grained permission questions for guards the
// static route table cannot express (owner-vs-admin deletes).
type PermissionChecker interface {
	Authorize(ctx context.Context, subject *authz.Subject, required ...string) error
}

// Notifier delivers the best-effort rejection notice to the ad owner. A
// failed delivery is logged and swallowed; it never fails the rejection.
type Notifier interface {
	NotifyOwner(ctx context.Context, ad *store.Ad, reason string, senderID int64) error
}

// Service owns the ad status state machine. Route-level role and permission
// requirements are enforced by the transport layer before any call lands
// here; the guards in this service are the ones that depend on the target ad
// (ownership, current status).
type Service struct {
	store    store.Storage
	perms    PermissionChecker
	notifier Notifier
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewService(st store.Storage, perms PermissionChecker, notifier Notifier, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:    st,
		perms:    perms,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create submits a new ad into the moderation queue. Every ad created through
// this entrypoint starts at PENDING_APPROVAL with clean approval state.
func (s *Service) Create(ctx context.Context, subject *authz.Subject, ad *store.Ad) error {
	if subject == nil {
		return ErrForbidden
	}
	ad.OwnerID = subject.ID
	return s.store.Ads.Create(ctx, ad)
}

// View fetches an ad under visibility rules: only APPROVED ads exist for
// strangers; the owner and admins see every status. Denials surface as
// not-found so that non-approved ads are not disclosed to exist.
func (s *Service) View(ctx context.Context, subject *authz.Subject, id int64, countView bool) (*store.Ad, error) {
	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ad.Status != store.AdStatusApproved && !s.canModerateOrOwn(subject, ad) {
		return nil, store.ErrNotFound
	}

	if countView && ad.Status == store.AdStatusApproved {
		if err := s.store.Ads.IncrementViews(ctx, id); err != nil {
			s.logger.Errorw("failed to count ad view", "ad_id", id, "error", err)
		} else {
			ad.Views++
		}
	}

	return ad, nil
}

// Update applies an edit. An owner editing an APPROVED or REJECTED ad sends
// it back to the moderation queue with the rejection cleared; the original
// approval timestamp is never touched, so "first approved on" survives
// arbitrary edit/re-approve cycles. Admin edits of other users' ads leave
// status alone and are audited.
func (s *Service) Update(ctx context.Context, subject *authz.Subject, id int64, fields store.AdUpdate) (*store.Ad, error) {
	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := subject != nil && subject.ID == ad.OwnerID
	if !isOwner && !subject.IsAdmin() {
		return nil, ErrForbidden
	}

	resubmit := isOwner && (ad.Status == store.AdStatusApproved || ad.Status == store.AdStatusRejected)

	updated, err := s.store.Ads.Update(ctx, id, fields, resubmit)
	if err != nil {
		return nil, err
	}

	if !isOwner {
		oldValues, newValues := editedValues(ad, updated, fields)
		entry := &store.AuditEntry{
			Action:      store.AuditAdEdited,
			AdminID:     subject.ID,
			EntityType:  "ad",
			EntityID:    id,
			OldValues:   oldValues,
			NewValues:   newValues,
			Description: fmt.Sprintf("admin edited ad %d owned by user %d", id, ad.OwnerID),
		}
		if err := s.store.Audit.Append(ctx, entry); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// editedValues collects before/after pairs for exactly the fields the edit
// touched, so audit entries do not drown real changes in unchanged noise.
func editedValues(before, after *store.Ad, fields store.AdUpdate) (map[string]any, map[string]any) {
	oldValues := make(map[string]any)
	newValues := make(map[string]any)
	if fields.Title != nil {
		oldValues["title"] = before.Title
		newValues["title"] = after.Title
	}
	if fields.Description != nil {
		oldValues["description"] = before.Description
		newValues["description"] = after.Description
	}
	if fields.Price != nil {
		oldValues["price"] = before.Price
		newValues["price"] = after.Price
	}
	if fields.CategoryID != nil {
		oldValues["category_id"] = before.CategoryID
		newValues["category_id"] = after.CategoryID
	}
	if fields.CityID != nil {
		oldValues["city_id"] = before.CityID
		newValues["city_id"] = after.CityID
	}
	return oldValues, newValues
}

// Approve moves the ad to APPROVED. The first approval stamps approved_at;
// later re-approvals after owner resubmission preserve the original
// timestamp. Concurrent approvals are serialized by the store's guarded
// update: the loser gets AlreadyApproved, never a silent double success.
func (s *Service) Approve(ctx context.Context, subject *authz.Subject, id int64) (*store.Ad, error) {
	if !subject.IsAdmin() {
		return nil, ErrForbidden
	}

	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.Status == store.AdStatusApproved {
		return nil, ErrAlreadyApproved
	}

	updated, err := s.store.Ads.Approve(ctx, id, subject.ID, s.now())
	if err != nil {
		return nil, s.classifyTransitionFailure(ctx, id, err, ErrAlreadyApproved)
	}

	entry := &store.AuditEntry{
		Action:      store.AuditAdApproved,
		AdminID:     subject.ID,
		EntityType:  "ad",
		EntityID:    id,
		OldValues:   map[string]any{"status": string(ad.Status)},
		NewValues:   map[string]any{"status": string(updated.Status)},
		Description: fmt.Sprintf("approved ad %d", id),
	}
	if err := s.store.Audit.Append(ctx, entry); err != nil {
		return nil, err
	}

	return updated, nil
}

// Reject moves the ad to REJECTED with a mandatory reason, then notifies the
// owner on a best-effort basis. Notification failure is logged and swallowed;
// the rejection itself stands.
func (s *Service) Reject(ctx context.Context, subject *authz.Subject, id int64, reason string) (*store.Ad, error) {
	if !subject.IsAdmin() {
		return nil, ErrForbidden
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.Status == store.AdStatusRejected {
		return nil, ErrAlreadyRejected
	}

	updated, err := s.store.Ads.Reject(ctx, id, subject.ID, reason, s.now())
	if err != nil {
		return nil, s.classifyTransitionFailure(ctx, id, err, ErrAlreadyRejected)
	}

	entry := &store.AuditEntry{
		Action:      store.AuditAdRejected,
		AdminID:     subject.ID,
		EntityType:  "ad",
		EntityID:    id,
		OldValues:   map[string]any{"status": string(ad.Status)},
		NewValues:   map[string]any{"status": string(updated.Status), "rejection_reason": reason},
		Description: fmt.Sprintf("rejected ad %d", id),
	}
	if err := s.store.Audit.Append(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyOwner(ctx, updated, reason, subject.ID); err != nil {
		s.logger.Errorw("rejection notice delivery failed", "ad_id", id, "owner_id", updated.OwnerID, "error", err)
	}

	return updated, nil
}

// Suspend takes an ad off the site regardless of how far through moderation
// it is. Suspending a still-pending ad is allowed.
func (s *Service) Suspend(ctx context.Context, subject *authz.Subject, id int64) (*store.Ad, error) {
	if !subject.IsAdmin() {
		return nil, ErrForbidden
	}

	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.Status == store.AdStatusSuspended {
		return nil, ErrAlreadySuspended
	}

	updated, err := s.store.Ads.Suspend(ctx, id)
	if err != nil {
		return nil, s.classifyTransitionFailure(ctx, id, err, ErrAlreadySuspended)
	}

	if err := s.auditStatusChange(ctx, subject.ID, id, ad.Status, updated.Status); err != nil {
		return nil, err
	}

	return updated, nil
}

// Unsuspend restores a suspended ad: back to APPROVED if it was ever
// approved, otherwise back to the moderation queue.
func (s *Service) Unsuspend(ctx context.Context, subject *authz.Subject, id int64) (*store.Ad, error) {
	if !subject.IsAdmin() {
		return nil, ErrForbidden
	}

	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.Status != store.AdStatusSuspended {
		return nil, ErrNotSuspended
	}

	updated, err := s.store.Ads.Unsuspend(ctx, id)
	if err != nil {
		return nil, s.classifyTransitionFailure(ctx, id, err, ErrNotSuspended)
	}

	if err := s.auditStatusChange(ctx, subject.ID, id, ad.Status, updated.Status); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete soft-deletes the ad. The owner may always delete their own ad; a
// non-owner needs to be an admin holding ads.delete, and that path is
// audited. Status is left untouched: deletion is a visibility marker.
func (s *Service) Delete(ctx context.Context, subject *authz.Subject, id int64) error {
	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return err
	}

	isOwner := subject != nil && subject.ID == ad.OwnerID
	if !isOwner {
		if !subject.IsAdmin() {
			return ErrForbidden
		}
		if err := s.perms.Authorize(ctx, subject, authz.PermAdsDelete); err != nil {
			var permErr *authz.InsufficientPermissionError
			if errors.As(err, &permErr) || errors.Is(err, authz.ErrRoleNotEligible) {
				return ErrForbidden
			}
			return err
		}
	}

	if err := s.store.Ads.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}

	if !isOwner {
		entry := &store.AuditEntry{
			Action:      store.AuditAdDeleted,
			AdminID:     subject.ID,
			EntityType:  "ad",
			EntityID:    id,
			OldValues:   map[string]any{"status": string(ad.Status)},
			Description: fmt.Sprintf("deleted ad %d owned by user %d", id, ad.OwnerID),
		}
		if err := s.store.Audit.Append(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

// AttachPhoto records a new photo URL on the ad. The owner may always
// attach; any other caller must be an admin holding ads.edit, and that path
// is audited.
func (s *Service) AttachPhoto(ctx context.Context, subject *authz.Subject, id int64, url string) error {
	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return err
	}

	isOwner, err := s.authorizePhotoEdit(ctx, subject, ad)
	if err != nil {
		return err
	}

	if err := s.store.Ads.AddPhotoURL(ctx, id, url); err != nil {
		return err
	}

	if !isOwner {
		entry := &store.AuditEntry{
			Action:      store.AuditAdEdited,
			AdminID:     subject.ID,
			EntityType:  "ad",
			EntityID:    id,
			NewValues:   map[string]any{"photo_url": url},
			Description: fmt.Sprintf("admin attached photo to ad %d owned by user %d", id, ad.OwnerID),
		}
		if err := s.store.Audit.Append(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

// DetachPhoto removes a photo URL from the ad under the same rules as
// AttachPhoto. Detaching a URL the ad does not carry is a not-found.
func (s *Service) DetachPhoto(ctx context.Context, subject *authz.Subject, id int64, url string) error {
	ad, err := s.store.Ads.GetByID(ctx, id)
	if err != nil {
		return err
	}

	isOwner, err := s.authorizePhotoEdit(ctx, subject, ad)
	if err != nil {
		return err
	}

	if !slices.Contains(ad.PhotoURLs, url) {
		return store.ErrNotFound
	}

	if err := s.store.Ads.RemovePhotoURL(ctx, id, url); err != nil {
		return err
	}

	if !isOwner {
		entry := &store.AuditEntry{
			Action:      store.AuditAdEdited,
			AdminID:     subject.ID,
			EntityType:  "ad",
			EntityID:    id,
			OldValues:   map[string]any{"photo_url": url},
			Description: fmt.Sprintf("admin removed photo from ad %d owned by user %d", id, ad.OwnerID),
		}
		if err := s.store.Audit.Append(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

// authorizePhotoEdit reports whether the subject is the owner, and denies
// non-owners that are not admins holding ads.edit.
func (s *Service) authorizePhotoEdit(ctx context.Context, subject *authz.Subject, ad *store.Ad) (bool, error) {
	if subject != nil && subject.ID == ad.OwnerID {
		return true, nil
	}
	if !subject.IsAdmin() {
		return false, ErrForbidden
	}
	if err := s.perms.Authorize(ctx, subject, authz.PermAdsEdit); err != nil {
		var permErr *authz.InsufficientPermissionError
		if errors.As(err, &permErr) || errors.Is(err, authz.ErrRoleNotEligible) {
			return false, ErrForbidden
		}
		return false, err
	}
	return false, nil
}

func (s *Service) canModerateOrOwn(subject *authz.Subject, ad *store.Ad) bool {
	if subject == nil {
		return false
	}
	return subject.ID == ad.OwnerID || subject.IsAdmin()
}

// classifyTransitionFailure turns a zero-row guarded update into the guard
// error the current state implies. A concurrent transition or delete can make
// the guarded update miss even though the earlier read passed.
func (s *Service) classifyTransitionFailure(ctx context.Context, id int64, err, guardErr error) error {
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, gerr := s.store.Ads.GetByID(ctx, id); gerr != nil {
		return gerr
	}
	return guardErr
}

func (s *Service) auditStatusChange(ctx context.Context, adminID, adID int64, oldStatus, newStatus store.AdStatus) error {
	entry := &store.AuditEntry{
		Action:      store.AuditAdEdited,
		AdminID:     adminID,
		EntityType:  "ad",
		EntityID:    adID,
		OldValues:   map[string]any{"status": string(oldStatus)},
		NewValues:   map[string]any{"status": string(newStatus)},
		Description: fmt.Sprintf("ad %d status changed from %s to %s", adID, oldStatus, newStatus),
	}
	return s.store.Audit.Append(ctx, entry)
}
