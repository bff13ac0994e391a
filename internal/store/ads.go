package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdStatus string

const (
	AdStatusDraft     AdStatus = "DRAFT"
	AdStatusPending   AdStatus = "PENDING_APPROVAL"
	AdStatusApproved  AdStatus = "APPROVED"
	AdStatusRejected  AdStatus = "REJECTED"
	AdStatusSuspended AdStatus = "SUSPENDED"
	AdStatusExpired   AdStatus = "EXPIRED"
)

// Ad represents the ads table structure
type Ad struct {
	ID              int64      `json:"id"`
	RefCode         string     `json:"ref_code"`
	OwnerID         int64      `json:"owner_id"`
	CategoryID      int64      `json:"category_id"`
	CityID          int64      `json:"city_id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	Price           *float64   `json:"price"`
	PhotoURLs       []string   `json:"photo_urls"`
	Status          AdStatus   `json:"status"`
	Views           int        `json:"views"`
	ApprovedBy      *int64     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *int64     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AdUpdate carries the owner-editable fields. Nil means unchanged.
type AdUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	CategoryID  *int64
	CityID      *int64
}

// AdFilter narrows List results.
type AdFilter struct {
	Status     *AdStatus
	CategoryID *int64
	CityID     *int64
	OwnerID    *int64
	Limit      int
	Offset     int
}

const adColumns = `id, ref_code, owner_id, category_id, city_id, title, description, price,
	       photo_urls, status, views, approved_by, approved_at, rejected_by, rejected_at,
	       rejection_reason, created_at, updated_at`

// adVisible is the single soft-delete predicate. Every query against the ads
// table must include it so that deleted ads never surface through a new path.
const adVisible = `deleted_at IS NULL`

type AdsStore struct {
	db *pgxpool.Pool
}

func scanAd(row pgx.Row) (*Ad, error) {
	var ad Ad
	err := row.Scan(
		&ad.ID, &ad.RefCode, &ad.OwnerID, &ad.CategoryID, &ad.CityID, &ad.Title,
		&ad.Description, &ad.Price, &ad.PhotoURLs, &ad.Status, &ad.Views,
		&ad.ApprovedBy, &ad.ApprovedAt, &ad.RejectedBy, &ad.RejectedAt,
		&ad.RejectionReason, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan ad row: %w", err)
	}
	return &ad, nil
}

// Create inserts a new ad. Status always starts at PENDING_APPROVAL; the
// moderation pipeline is the only writer of any other status.
func (s *AdsStore) Create(ctx context.Context, ad *Ad) error {
	query := `
		INSERT INTO ads (ref_code, owner_id, category_id, city_id, title, description, price, photo_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, views, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		ad.RefCode, ad.OwnerID, ad.CategoryID, ad.CityID, ad.Title,
		ad.Description, ad.Price, ad.PhotoURLs, AdStatusPending,
	).Scan(&ad.ID, &ad.Status, &ad.Views, &ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}
	return nil
}

func (s *AdsStore) GetByID(ctx context.Context, id int64) (*Ad, error) {
	query := fmt.Sprintf(`SELECT %s FROM ads WHERE id = $1 AND %s`, adColumns, adVisible)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanAd(s.db.QueryRow(ctx, query, id))
}

func (s *AdsStore) List(ctx context.Context, filter AdFilter) ([]Ad, int, error) {
	where := []string{adVisible}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.CityID != nil {
		where = append(where, fmt.Sprintf("city_id = $%d", argIndex))
		args = append(args, *filter.CityID)
		argIndex++
	}
	if filter.OwnerID != nil {
		where = append(where, fmt.Sprintf("owner_id = $%d", argIndex))
		args = append(args, *filter.OwnerID)
		argIndex++
	}

	whereClause := strings.Join(where, " AND ")

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var totalCount int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM ads WHERE %s`, whereClause)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM ads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, adColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query ads: %w", err)
	}
	defer rows.Close()

	ads, err := collectAds(rows)
	if err != nil {
		return nil, 0, err
	}
	return ads, totalCount, nil
}

// ListPending returns the moderation queue, oldest submissions first.
func (s *AdsStore) ListPending(ctx context.Context, limit, offset int) ([]Ad, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var totalCount int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM ads WHERE status = $1 AND %s`, adVisible)
	if err := s.db.QueryRow(ctx, countQuery, AdStatusPending).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending ads: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM ads
		WHERE status = $1 AND %s
		ORDER BY updated_at ASC
		LIMIT $2 OFFSET $3
	`, adColumns, adVisible)

	rows, err := s.db.Query(ctx, query, AdStatusPending, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query pending ads: %w", err)
	}
	defer rows.Close()

	ads, err := collectAds(rows)
	if err != nil {
		return nil, 0, err
	}
	return ads, totalCount, nil
}

// Update applies owner edits. When resubmit is true the ad re-enters the
// moderation queue and the previous rejection is cleared; approved_at is
// deliberately never touched so the first-approval timestamp survives
// edit/re-approve cycles.
func (s *AdsStore) Update(ctx context.Context, id int64, fields AdUpdate, resubmit bool) (*Ad, error) {
	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	if fields.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", argIndex))
		args = append(args, *fields.Title)
		argIndex++
	}
	if fields.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, *fields.Description)
		argIndex++
	}
	if fields.Price != nil {
		setParts = append(setParts, fmt.Sprintf("price = $%d", argIndex))
		args = append(args, *fields.Price)
		argIndex++
	}
	if fields.CategoryID != nil {
		setParts = append(setParts, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *fields.CategoryID)
		argIndex++
	}
	if fields.CityID != nil {
		setParts = append(setParts, fmt.Sprintf("city_id = $%d", argIndex))
		args = append(args, *fields.CityID)
		argIndex++
	}

	if len(setParts) == 0 && !resubmit {
		return nil, fmt.Errorf("no fields to update")
	}

	if resubmit {
		setParts = append(setParts, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, AdStatusPending)
		argIndex++
		setParts = append(setParts, "rejected_by = NULL", "rejected_at = NULL", "rejection_reason = NULL")
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE ads
		SET %s
		WHERE id = $%d AND %s
		RETURNING %s
	`, strings.Join(setParts, ", "), argIndex, adVisible, adColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanAd(s.db.QueryRow(ctx, query, args...))
}

// Approve flips the ad to APPROVED in a single guarded update. The status
// predicate makes concurrent approvals race-safe: the loser matches zero rows
// and gets ErrNotFound, which the caller classifies against current state.
// approved_at is only written when previously null.
func (s *AdsStore) Approve(ctx context.Context, id, adminID int64, at time.Time) (*Ad, error) {
	query := fmt.Sprintf(`
		UPDATE ads
		SET status = $2,
		    approved_by = $3,
		    approved_at = COALESCE(approved_at, $4),
		    rejected_by = NULL,
		    rejected_at = NULL,
		    rejection_reason = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status <> $2 AND %s
		RETURNING %s
	`, adVisible, adColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanAd(s.db.QueryRow(ctx, query, id, AdStatusApproved, adminID, at))
}

// Reject flips the ad to REJECTED under the same guarded-update scheme.
func (s *AdsStore) Reject(ctx context.Context, id, adminID int64, reason string, at time.Time) (*Ad, error) {
	query := fmt.Sprintf(`
		UPDATE ads
		SET status = $2,
		    rejected_by = $3,
		    rejected_at = $4,
		    rejection_reason = $5,
		    updated_at = NOW()
		WHERE id = $1 AND status <> $2 AND %s
		RETURNING %s
	`, adVisible, adColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanAd(s.db.QueryRow(ctx, query, id, AdStatusRejected, adminID, reason, at))
}

func (s *AdsStore) Suspend(ctx context.Context, id int64) (*Ad, error) {
	query := fmt.Sprintf(`
		UPDATE ads
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status <> $2 AND %s
		RETURNING %s
	`, adVisible, adColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanAd(s.db.QueryRow(ctx, query, id, AdStatusSuspended))
}

// Unsuspend restores an ad to APPROVED if it was ever approved, otherwise
// back to the moderation queue.
func (s *AdsStore) Unsuspend(ctx context.Context, id int64) (*Ad, error) {
	query := fmt.Sprintf(`
		UPDATE ads
		SET status = CASE WHEN approved_at IS NOT NULL THEN $3::text ELSE $4::text END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2 AND %s
		RETURNING %s
	`, adVisible, adColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanAd(s.db.QueryRow(ctx, query, id, AdStatusSuspended, AdStatusApproved, AdStatusPending))
}

func (s *AdsStore) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := fmt.Sprintf(`UPDATE ads SET deleted_at = $2 WHERE id = $1 AND %s`, adVisible)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmdTag, err := s.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AdsStore) IncrementViews(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE ads SET views = views + 1 WHERE id = $1 AND %s`, adVisible)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AdsStore) AddPhotoURL(ctx context.Context, id int64, url string) error {
	query := fmt.Sprintf(`
		UPDATE ads SET photo_urls = array_append(photo_urls, $2), updated_at = NOW()
		WHERE id = $1 AND %s
	`, adVisible)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmdTag, err := s.db.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to add photo url: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AdsStore) RemovePhotoURL(ctx context.Context, id int64, url string) error {
	query := fmt.Sprintf(`
		UPDATE ads SET photo_urls = array_remove(photo_urls, $2), updated_at = NOW()
		WHERE id = $1 AND %s
	`, adVisible)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmdTag, err := s.db.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to remove photo url: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectAds(rows pgx.Rows) ([]Ad, error) {
	var ads []Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, *ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return ads, nil
}
