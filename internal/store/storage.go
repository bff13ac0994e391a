package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		Create(context.Context, *User) error
		SetRefreshToken(ctx context.Context, userID int64, tokenHash string) error
		ClearRefreshToken(ctx context.Context, userID int64) error
	}
	Ads interface {
		Create(context.Context, *Ad) error
		GetByID(context.Context, int64) (*Ad, error)
		List(context.Context, AdFilter) ([]Ad, int, error)
		ListPending(ctx context.Context, limit, offset int) ([]Ad, int, error)
		Update(ctx context.Context, id int64, fields AdUpdate, resubmit bool) (*Ad, error)
		Approve(ctx context.Context, id, adminID int64, at time.Time) (*Ad, error)
		Reject(ctx context.Context, id, adminID int64, reason string, at time.Time) (*Ad, error)
		Suspend(ctx context.Context, id int64) (*Ad, error)
		Unsuspend(ctx context.Context, id int64) (*Ad, error)
		SoftDelete(ctx context.Context, id int64, at time.Time) error
		IncrementViews(ctx context.Context, id int64) error
		AddPhotoURL(ctx context.Context, id int64, url string) error
		RemovePhotoURL(ctx context.Context, id int64, url string) error
	}
	Permissions interface {
		ListAll(context.Context) ([]Permission, error)
		Get(context.Context, int64) (*Permission, error)
		GrantsFor(ctx context.Context, adminID int64) ([]Permission, error)
		Assign(ctx context.Context, adminID, permissionID int64) (*PermissionGrant, bool, error)
		Revoke(ctx context.Context, adminID, permissionID int64) error
	}
	Audit interface {
		Append(context.Context, *AuditEntry) error
		List(ctx context.Context, limit, offset int) ([]AuditEntry, int, error)
	}
	Messages interface {
		Create(context.Context, *Message) error
		ListForUser(ctx context.Context, userID int64, limit, offset int) ([]Message, int, error)
		ListForAd(ctx context.Context, adID, userID int64) ([]Message, error)
	}
	Categories interface {
		Create(context.Context, *Category) error
		GetByID(context.Context, int64) (*Category, error)
		List(context.Context) ([]Category, error)
		Update(context.Context, *Category) error
		Delete(context.Context, int64) error
	}
	Cities interface {
		Create(context.Context, *City) error
		GetByID(context.Context, int64) (*City, error)
		List(context.Context) ([]City, error)
		Delete(context.Context, int64) error
	}
	PushTokens interface {
		Register(ctx context.Context, userID int64, token string) error
		TokensFor(ctx context.Context, userID int64) ([]string, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:       &UsersStore{db},
		Ads:         &AdsStore{db},
		Permissions: &PermissionsStore{db},
		Audit:       &AuditStore{db},
		Messages:    &MessagesStore{db},
		Categories:  &CategoriesStore{db},
		Cities:      &CitiesStore{db},
		PushTokens:  &PushTokensStore{db},
	}
}
