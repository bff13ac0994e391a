package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender abstracts the push gateway so the notifier can be tested
// without network calls. The message types are the exponent SDK's own.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
	PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error)
}
