package moderation

import "errors"

var (
	// ErrForbidden means the caller is identified but not entitled to this
	// ad or action.
	ErrForbidden = errors.New("moderation: forbidden")

	// State-machine guard violations. All are safe to retry after the
	// caller inspects current status.
	ErrAlreadyApproved  = errors.New("moderation: ad already approved")
	ErrAlreadyRejected  = errors.New("moderation: ad already rejected")
	ErrAlreadySuspended = errors.New("moderation: ad already suspended")
	ErrNotSuspended     = errors.New("moderation: ad is not suspended")

	// ErrReasonRequired rejects an empty or whitespace-only rejection reason.
	ErrReasonRequired = errors.New("moderation: rejection reason is required")
)
