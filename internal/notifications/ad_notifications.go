package notifications

import (
	"context"
	"fmt"
	"strconv"

	"bazaar/internal/store"

	"github.com/9ssi7/exponent"
)

// AdNotifier delivers moderation notices to ad owners: a system message in
// the owner's inbox, plus a push to every registered device. The moderation
// service treats the whole delivery as best-effort.
type AdNotifier struct {
	store store.Storage
	push  PushSender
}

func NewAdNotifier(st store.Storage, push PushSender) *AdNotifier {
	return &AdNotifier{store: st, push: push}
}

func (n *AdNotifier) NotifyOwner(ctx context.Context, ad *store.Ad, reason string, senderID int64) error {
	body := fmt.Sprintf("Your ad %q was rejected: %s", ad.Title, reason)

	msg := &store.Message{
		AdID:        ad.ID,
		SenderID:    senderID,
		RecipientID: ad.OwnerID,
		Body:        body,
		System:      true,
	}
	if err := n.store.Messages.Create(ctx, msg); err != nil {
		return fmt.Errorf("writing rejection message: %w", err)
	}

	tokens, err := n.store.PushTokens.TokensFor(ctx, ad.OwnerID)
	if err != nil {
		return fmt.Errorf("fetching push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: "Ad rejected",
			Body:  body,
			Data: map[string]string{
				"type":  "ad_moderation",
				"adId":  strconv.FormatInt(ad.ID, 10),
				"event": string(ad.Status),
			},
		})
	}

	if _, err := n.push.Publish(ctx, msgs); err != nil {
		return fmt.Errorf("publishing push notifications: %w", err)
	}
	return nil
}
