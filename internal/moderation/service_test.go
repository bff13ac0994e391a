package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"bazaar/internal/authz"
	"bazaar/internal/store"

	"go.uber.org/zap"
)

// memAds is an in-memory stand-in for the ads table that keeps the same
// guard semantics as the SQL store: transitions miss (ErrNotFound) when the
// ad is already in the target state or has been soft-deleted.
type memAds struct {
	ads    map[int64]*store.Ad
	nextID int64
}

func newMemAds() *memAds {
	return &memAds{ads: make(map[int64]*store.Ad), nextID: 1}
}

func (m *memAds) get(id int64) (*store.Ad, bool) {
	ad, ok := m.ads[id]
	return ad, ok
}

func copyAd(ad *store.Ad) *store.Ad {
	dup := *ad
	return &dup
}

func (m *memAds) Create(_ context.Context, ad *store.Ad) error {
	ad.ID = m.nextID
	m.nextID++
	ad.Status = store.AdStatusPending
	ad.CreatedAt = time.Now()
	ad.UpdatedAt = ad.CreatedAt
	m.ads[ad.ID] = copyAd(ad)
	return nil
}

func (m *memAds) GetByID(_ context.Context, id int64) (*store.Ad, error) {
	ad, ok := m.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyAd(ad), nil
}

func (m *memAds) List(_ context.Context, _ store.AdFilter) ([]store.Ad, int, error) {
	return nil, 0, nil
}

func (m *memAds) ListPending(_ context.Context, _, _ int) ([]store.Ad, int, error) {
	var out []store.Ad
	for _, ad := range m.ads {
		if ad.Status == store.AdStatusPending {
			out = append(out, *ad)
		}
	}
	return out, len(out), nil
}

func (m *memAds) Update(_ context.Context, id int64, fields store.AdUpdate, resubmit bool) (*store.Ad, error) {
	ad, ok := m.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	if fields.Title != nil {
		ad.Title = *fields.Title
	}
	if fields.Description != nil {
		ad.Description = fields.Description
	}
	if fields.Price != nil {
		ad.Price = fields.Price
	}
	if fields.CategoryID != nil {
		ad.CategoryID = *fields.CategoryID
	}
	if fields.CityID != nil {
		ad.CityID = *fields.CityID
	}
	if resubmit {
		ad.Status = store.AdStatusPending
		ad.RejectedBy = nil
		ad.RejectedAt = nil
		ad.RejectionReason = nil
	}
	return copyAd(ad), nil
}

func (m *memAds) Approve(_ context.Context, id, adminID int64, at time.Time) (*store.Ad, error) {
	ad, ok := m.get(id)
	if !ok || ad.Status == store.AdStatusApproved {
		return nil, store.ErrNotFound
	}
	ad.Status = store.AdStatusApproved
	ad.ApprovedBy = &adminID
	if ad.ApprovedAt == nil {
		stamp := at
		ad.ApprovedAt = &stamp
	}
	ad.RejectedBy = nil
	ad.RejectedAt = nil
	ad.RejectionReason = nil
	return copyAd(ad), nil
}

func (m *memAds) Reject(_ context.Context, id, adminID int64, reason string, at time.Time) (*store.Ad, error) {
	ad, ok := m.get(id)
	if !ok || ad.Status == store.AdStatusRejected {
		return nil, store.ErrNotFound
	}
	ad.Status = store.AdStatusRejected
	ad.RejectedBy = &adminID
	stamp := at
	ad.RejectedAt = &stamp
	ad.RejectionReason = &reason
	return copyAd(ad), nil
}

func (m *memAds) Suspend(_ context.Context, id int64) (*store.Ad, error) {
	ad, ok := m.get(id)
	if !ok || ad.Status == store.AdStatusSuspended {
		return nil, store.ErrNotFound
	}
	ad.Status = store.AdStatusSuspended
	return copyAd(ad), nil
}

func (m *memAds) Unsuspend(_ context.Context, id int64) (*store.Ad, error) {
	ad, ok := m.get(id)
	if !ok || ad.Status != store.AdStatusSuspended {
		return nil, store.ErrNotFound
	}
	if ad.ApprovedAt != nil {
		ad.Status = store.AdStatusApproved
	} else {
		ad.Status = store.AdStatusPending
	}
	return copyAd(ad), nil
}

func (m *memAds) SoftDelete(_ context.Context, id int64, _ time.Time) error {
	if _, ok := m.get(id); !ok {
		return store.ErrNotFound
	}
	delete(m.ads, id)
	return nil
}

func (m *memAds) IncrementViews(_ context.Context, id int64) error {
	ad, ok := m.get(id)
	if !ok {
		return store.ErrNotFound
	}
	ad.Views++
	return nil
}

func (m *memAds) AddPhotoURL(_ context.Context, id int64, url string) error {
	ad, ok := m.get(id)
	if !ok {
		return store.ErrNotFound
	}
	ad.PhotoURLs = append(ad.PhotoURLs, url)
	return nil
}

func (m *memAds) RemovePhotoURL(_ context.Context, id int64, url string) error {
	ad, ok := m.get(id)
	if !ok {
		return store.ErrNotFound
	}
	for i, u := range ad.PhotoURLs {
		if u == url {
			ad.PhotoURLs = append(ad.PhotoURLs[:i], ad.PhotoURLs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type memAudit struct {
	entries []store.AuditEntry
}

func (m *memAudit) Append(_ context.Context, entry *store.AuditEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudit) List(_ context.Context, _, _ int) ([]store.AuditEntry, int, error) {
	return m.entries, len(m.entries), nil
}

type stubPerms struct {
	err error
}

func (s *stubPerms) Authorize(_ context.Context, _ *authz.Subject, _ ...string) error {
	return s.err
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) NotifyOwner(_ context.Context, _ *store.Ad, _ string, _ int64) error {
	s.calls++
	return s.err
}

type fixture struct {
	svc      *Service
	ads      *memAds
	audit    *memAudit
	perms    *stubPerms
	notifier *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ads := newMemAds()
	audit := &memAudit{}
	perms := &stubPerms{}
	notifier := &stubNotifier{}
	st := store.Storage{Ads: ads, Audit: audit}
	svc := NewService(st, perms, notifier, zap.NewNop().Sugar())
	return &fixture{svc: svc, ads: ads, audit: audit, perms: perms, notifier: notifier}
}

func (f *fixture) seedAd(t *testing.T, ownerID int64) *store.Ad {
	t.Helper()
	ad := &store.Ad{RefCode: "BZ-TEST", OwnerID: ownerID, CategoryID: 1, CityID: 1, Title: "bike"}
	if err := f.ads.Create(context.Background(), ad); err != nil {
		t.Fatalf("seed ad: %v", err)
	}
	return ad
}

func user(id int64) *authz.Subject {
	return &authz.Subject{ID: id, Role: authz.RoleUser}
}

func admin(id int64) *authz.Subject {
	return &authz.Subject{ID: id, Role: authz.RoleAdmin}
}

func TestCreateStartsPending(t *testing.T) {
	f := newFixture(t)

	ad := &store.Ad{RefCode: "BZ-1", CategoryID: 1, CityID: 1, Title: "sofa"}
	if err := f.svc.Create(context.Background(), user(7), ad); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ad.OwnerID != 7 {
		t.Errorf("owner = %d, want 7", ad.OwnerID)
	}
	if ad.Status != store.AdStatusPending {
		t.Errorf("status = %s, want %s", ad.Status, store.AdStatusPending)
	}
}

func TestCreateAnonymousForbidden(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Create(context.Background(), nil, &store.Ad{Title: "sofa"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestViewVisibility(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)

	tests := []struct {
		name    string
		subject *authz.Subject
		wantErr error
	}{
		{"anonymous cannot see pending", nil, store.ErrNotFound},
		{"stranger cannot see pending", user(99), store.ErrNotFound},
		{"owner sees pending", user(7), nil},
		{"admin sees pending", admin(2), nil},
		{"super admin sees pending", &authz.Subject{ID: 3, Role: authz.RoleSuperAdmin}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.View(context.Background(), tc.subject, ad.ID, false)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestViewCountsOnlyApproved(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)

	// Pending: owner view must not bump the counter.
	got, err := f.svc.View(context.Background(), user(7), ad.ID, true)
	if err != nil {
		t.Fatalf("View pending: %v", err)
	}
	if got.Views != 0 {
		t.Errorf("pending views = %d, want 0", got.Views)
	}

	if _, err := f.svc.Approve(context.Background(), admin(2), ad.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	got, err = f.svc.View(context.Background(), nil, ad.ID, true)
	if err != nil {
		t.Fatalf("View approved: %v", err)
	}
	if got.Views != 1 {
		t.Errorf("approved views = %d, want 1", got.Views)
	}
}

func TestApproveStampsAndAudits(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)

	updated, err := f.svc.Approve(context.Background(), admin(2), ad.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if updated.Status != store.AdStatusApproved {
		t.Errorf("status = %s, want APPROVED", updated.Status)
	}
	if updated.ApprovedAt == nil {
		t.Error("approved_at not stamped")
	}
	if updated.ApprovedBy == nil || *updated.ApprovedBy != 2 {
		t.Errorf("approved_by = %v, want 2", updated.ApprovedBy)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != store.AuditAdApproved {
		t.Fatalf("audit entries = %+v, want one AD_APPROVED", f.audit.entries)
	}
}

func TestApproveByNonAdminForbidden(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)

	if _, err := f.svc.Approve(context.Background(), user(7), ad.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("owner approve err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Approve(context.Background(), nil, ad.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous approve err = %v, want ErrForbidden", err)
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)

	if _, err := f.svc.Approve(context.Background(), admin(2), ad.ID); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	if _, err := f.svc.Approve(context.Background(), admin(3), ad.ID); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("second Approve err = %v, want ErrAlreadyApproved", err)
	}
	if len(f.audit.entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(f.audit.entries))
	}
}

// The first approval timestamp must survive an owner edit, the resulting
// resubmission and a later re-approval by a different admin.
func TestApprovedAtSurvivesResubmitCycle(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	ctx := context.Background()

	first, err := f.svc.Approve(ctx, admin(2), ad.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	firstStamp := *first.ApprovedAt

	newTitle := "bike, price lowered"
	edited, err := f.svc.Update(ctx, user(7), ad.ID, store.AdUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if edited.Status != store.AdStatusPending {
		t.Fatalf("post-edit status = %s, want PENDING_APPROVAL", edited.Status)
	}

	second, err := f.svc.Approve(ctx, admin(3), ad.ID)
	if err != nil {
		t.Fatalf("re-Approve: %v", err)
	}
	if second.ApprovedAt == nil || !second.ApprovedAt.Equal(firstStamp) {
		t.Errorf("approved_at = %v, want original %v", second.ApprovedAt, firstStamp)
	}
	if second.ApprovedBy == nil || *second.ApprovedBy != 3 {
		t.Errorf("approved_by = %v, want latest approver 3", second.ApprovedBy)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)

	for _, reason := range []string{"", "   ", "\t\n"} {
		if _, err := f.svc.Reject(context.Background(), admin(2), ad.ID, reason); !errors.Is(err, ErrReasonRequired) {
			t.Errorf("Reject(%q) err = %v, want ErrReasonRequired", reason, err)
		}
	}

	got, _ := f.ads.GetByID(context.Background(), ad.ID)
	if got.Status != store.AdStatusPending {
		t.Errorf("status mutated to %s by failed reject", got.Status)
	}
	if len(f.audit.entries) != 0 {
		t.Errorf("audit written on failed reject: %+v", f.audit.entries)
	}
	if f.notifier.calls != 0 {
		t.Errorf("notifier called %d times on failed reject", f.notifier.calls)
	}
}

func TestRejectNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)

	updated, err := f.svc.Reject(context.Background(), admin(2), ad.ID, "prohibited item")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if updated.Status != store.AdStatusRejected {
		t.Errorf("status = %s, want REJECTED", updated.Status)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != "prohibited item" {
		t.Errorf("reason = %v, want %q", updated.RejectionReason, "prohibited item")
	}
	if f.notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", f.notifier.calls)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != store.AuditAdRejected {
		t.Fatalf("audit entries = %+v, want one AD_REJECTED", f.audit.entries)
	}
}

func TestRejectSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	f.notifier.err = errors.New("push gateway down")

	updated, err := f.svc.Reject(context.Background(), admin(2), ad.ID, "spam")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if updated.Status != store.AdStatusRejected {
		t.Errorf("status = %s, want REJECTED", updated.Status)
	}
}

func TestRejectTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	ctx := context.Background()

	if _, err := f.svc.Reject(ctx, admin(2), ad.ID, "spam"); err != nil {
		t.Fatalf("first Reject: %v", err)
	}
	if _, err := f.svc.Reject(ctx, admin(3), ad.ID, "still spam"); !errors.Is(err, ErrAlreadyRejected) {
		t.Fatalf("second Reject err = %v, want ErrAlreadyRejected", err)
	}
	if f.notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", f.notifier.calls)
	}
}

func TestSuspendRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Once-approved ads come back as APPROVED.
	approvedAd := f.seedAd(t, 7)
	if _, err := f.svc.Approve(ctx, admin(2), approvedAd.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.svc.Suspend(ctx, admin(2), approvedAd.ID); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	restored, err := f.svc.Unsuspend(ctx, admin(2), approvedAd.ID)
	if err != nil {
		t.Fatalf("Unsuspend: %v", err)
	}
	if restored.Status != store.AdStatusApproved {
		t.Errorf("restored status = %s, want APPROVED", restored.Status)
	}

	// Never-approved ads go back to the moderation queue.
	pendingAd := f.seedAd(t, 8)
	if _, err := f.svc.Suspend(ctx, admin(2), pendingAd.ID); err != nil {
		t.Fatalf("Suspend pending: %v", err)
	}
	restored, err = f.svc.Unsuspend(ctx, admin(2), pendingAd.ID)
	if err != nil {
		t.Fatalf("Unsuspend pending: %v", err)
	}
	if restored.Status != store.AdStatusPending {
		t.Errorf("restored status = %s, want PENDING_APPROVAL", restored.Status)
	}
}

func TestSuspendGuards(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	ctx := context.Background()

	if _, err := f.svc.Unsuspend(ctx, admin(2), ad.ID); !errors.Is(err, ErrNotSuspended) {
		t.Errorf("Unsuspend active err = %v, want ErrNotSuspended", err)
	}
	if _, err := f.svc.Suspend(ctx, admin(2), ad.ID); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if _, err := f.svc.Suspend(ctx, admin(2), ad.ID); !errors.Is(err, ErrAlreadySuspended) {
		t.Errorf("double Suspend err = %v, want ErrAlreadySuspended", err)
	}
}

func TestUpdateAuthorization(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	ctx := context.Background()
	newTitle := "updated"

	if _, err := f.svc.Update(ctx, user(99), ad.ID, store.AdUpdate{Title: &newTitle}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger update err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Update(ctx, nil, ad.ID, store.AdUpdate{Title: &newTitle}); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous update err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Update(ctx, user(7), ad.ID, store.AdUpdate{Title: &newTitle}); err != nil {
		t.Errorf("owner update err = %v", err)
	}
}

func TestOwnerEditOfPendingDoesNotResubmit(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	newTitle := "still pending"

	updated, err := f.svc.Update(context.Background(), user(7), ad.ID, store.AdUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != store.AdStatusPending {
		t.Errorf("status = %s, want PENDING_APPROVAL", updated.Status)
	}
}

func TestOwnerEditOfRejectedResubmitsAndClearsRejection(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	ctx := context.Background()

	if _, err := f.svc.Reject(ctx, admin(2), ad.ID, "bad photos"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	newTitle := "better photos now"
	updated, err := f.svc.Update(ctx, user(7), ad.ID, store.AdUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != store.AdStatusPending {
		t.Errorf("status = %s, want PENDING_APPROVAL", updated.Status)
	}
	if updated.RejectionReason != nil || updated.RejectedBy != nil || updated.RejectedAt != nil {
		t.Errorf("rejection fields not cleared: %+v", updated)
	}
}

func TestAdminEditIsAuditedAndKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ad := f.seedAd(t, 7)
	ctx := context.Background()

	if _, err := f.svc.Approve(ctx, admin(2), ad.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	newTitle := "cleaned up title"
	newPrice := 99.0
	updated, err := f.svc.Update(ctx, admin(2), ad.ID, store.AdUpdate{Title: &newTitle, Price: &newPrice})
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if updated.Status != store.AdStatusApproved {
		t.Errorf("status = %s, want APPROVED to stay", updated.Status)
	}

	var edits []store.AuditEntry
	for _, e := range f.audit.entries {
		if e.Action == store.AuditAdEdited {
			edits = append(edits, e)
		}
	}
	if len(edits) != 1 {
		t.Fatalf("AD_EDITED entries = %d, want 1", len(edits))
	}

	// Every edited field is captured; untouched fields stay out.
	entry := edits[0]
	if entry.OldValues["title"] != "bike" || entry.NewValues["title"] != newTitle {
		t.Errorf("title audit values = %v -> %v", entry.OldValues["title"], entry.NewValues["title"])
	}
	if _, ok := entry.NewValues["price"]; !ok {
		t.Error("price change missing from audit entry")
	}
	if _, ok := entry.NewValues["city_id"]; ok {
		t.Error("unchanged city_id recorded in audit entry")
	}
}

func TestPhotoMutationPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const url = "https://cdn.example.com/upload/ads/a1.jpg"

	t.Run("owner attaches without audit", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		if err := f.svc.AttachPhoto(ctx, user(7), ad.ID, url); err != nil {
			t.Fatalf("owner AttachPhoto: %v", err)
		}
		got, _ := f.ads.GetByID(ctx, ad.ID)
		if len(got.PhotoURLs) != 1 || got.PhotoURLs[0] != url {
			t.Errorf("photo_urls = %v, want [%s]", got.PhotoURLs, url)
		}
		if len(f.audit.entries) != 0 {
			t.Errorf("owner attach audited: %+v", f.audit.entries)
		}
	})

	t.Run("stranger user forbidden", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		if err := f.svc.AttachPhoto(ctx, user(99), ad.ID, url); !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin without grant forbidden and nothing mutates", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		f.perms.err = &authz.InsufficientPermissionError{Missing: []string{authz.PermAdsEdit}}
		defer func() { f.perms.err = nil }()

		if err := f.svc.AttachPhoto(ctx, admin(2), ad.ID, url); !errors.Is(err, ErrForbidden) {
			t.Errorf("AttachPhoto err = %v, want ErrForbidden", err)
		}
		got, _ := f.ads.GetByID(ctx, ad.ID)
		if len(got.PhotoURLs) != 0 {
			t.Errorf("photo attached despite denial: %v", got.PhotoURLs)
		}
	})

	t.Run("admin with grant is audited both ways", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		before := len(f.audit.entries)

		if err := f.svc.AttachPhoto(ctx, admin(2), ad.ID, url); err != nil {
			t.Fatalf("admin AttachPhoto: %v", err)
		}
		if err := f.svc.DetachPhoto(ctx, admin(2), ad.ID, url); err != nil {
			t.Fatalf("admin DetachPhoto: %v", err)
		}

		entries := f.audit.entries[before:]
		if len(entries) != 2 {
			t.Fatalf("audit entries = %d, want 2", len(entries))
		}
		for _, e := range entries {
			if e.Action != store.AuditAdEdited {
				t.Errorf("audit action = %s, want %s", e.Action, store.AuditAdEdited)
			}
		}
		if entries[0].NewValues["photo_url"] != url {
			t.Errorf("attach audit photo_url = %v, want %s", entries[0].NewValues["photo_url"], url)
		}
		if entries[1].OldValues["photo_url"] != url {
			t.Errorf("detach audit photo_url = %v, want %s", entries[1].OldValues["photo_url"], url)
		}
	})

	t.Run("detaching an absent photo is not found", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		if err := f.svc.DetachPhoto(ctx, user(7), ad.ID, url); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestDeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("owner always may", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		if err := f.svc.Delete(ctx, user(7), ad.ID); err != nil {
			t.Fatalf("owner Delete: %v", err)
		}
		if _, err := f.ads.GetByID(ctx, ad.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("deleted ad still visible, err = %v", err)
		}
	})

	t.Run("stranger user forbidden", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		if err := f.svc.Delete(ctx, user(99), ad.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin without grant forbidden", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		f.perms.err = &authz.InsufficientPermissionError{Missing: []string{authz.PermAdsDelete}}
		defer func() { f.perms.err = nil }()
		if err := f.svc.Delete(ctx, admin(2), ad.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin with grant is audited", func(t *testing.T) {
		ad := f.seedAd(t, 7)
		before := len(f.audit.entries)
		if err := f.svc.Delete(ctx, admin(2), ad.ID); err != nil {
			t.Fatalf("admin Delete: %v", err)
		}
		if len(f.audit.entries) != before+1 || f.audit.entries[before].Action != store.AuditAdDeleted {
			t.Errorf("expected one AD_DELETED entry, got %+v", f.audit.entries[before:])
		}
	})
}

func TestFullModerationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := user(7)
	moderator := admin(2)

	ad := &store.Ad{RefCode: "BZ-SCN", CategoryID: 1, CityID: 1, Title: "winter tires"}
	if err := f.svc.Create(ctx, owner, ad); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Invisible to the public while pending.
	if _, err := f.svc.View(ctx, nil, ad.ID, false); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("public view of pending err = %v, want ErrNotFound", err)
	}

	if _, err := f.svc.Reject(ctx, moderator, ad.ID, "missing price"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	price := 120.0
	if _, err := f.svc.Update(ctx, owner, ad.ID, store.AdUpdate{Price: &price}); err != nil {
		t.Fatalf("owner resubmit: %v", err)
	}

	approved, err := f.svc.Approve(ctx, moderator, ad.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.RejectionReason != nil {
		t.Errorf("rejection reason survived approval: %v", *approved.RejectionReason)
	}

	// Now the public can see it.
	if _, err := f.svc.View(ctx, nil, ad.ID, false); err != nil {
		t.Fatalf("public view of approved: %v", err)
	}

	if _, err := f.svc.Suspend(ctx, moderator, ad.ID); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if _, err := f.svc.View(ctx, nil, ad.ID, false); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("public view of suspended err = %v, want ErrNotFound", err)
	}

	restored, err := f.svc.Unsuspend(ctx, moderator, ad.ID)
	if err != nil {
		t.Fatalf("Unsuspend: %v", err)
	}
	if restored.Status != store.AdStatusApproved {
		t.Errorf("restored status = %s, want APPROVED", restored.Status)
	}

	if err := f.svc.Delete(ctx, owner, ad.ID); err != nil {
		t.Fatalf("owner Delete: %v", err)
	}
	if _, err := f.svc.View(ctx, owner, ad.ID, false); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("view after delete err = %v, want ErrNotFound", err)
	}
}
