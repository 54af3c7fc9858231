package notification

import (
	"context"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// KakaoChannel delivers artifact batches over KakaoTalk. It is the fallback
// channel and only usable when the contact has a phone number.
type KakaoChannel struct {
	logger *slog.Logger
}

// NewKakaoChannel creates the kakao channel.
func NewKakaoChannel(logger *slog.Logger) *KakaoChannel {
	return &KakaoChannel{logger: logger.With("component", "kakao-channel")}
}

// Channel identifies this implementation.
func (c *KakaoChannel) Channel() delivery.Channel {
	return delivery.ChannelKakao
}

// Recipient extracts the phone number from the contact, empty when the
// customer did not provide one.
func (c *KakaoChannel) Recipient(contact order.Contact) string {
	return contact.Phone()
}

// Send accepts the batch and returns a fabricated provider message id.
// Fails when no phone number is available.
func (c *KakaoChannel) Send(ctx context.Context, recipient string, artifacts []*artifact.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if recipient == "" {
		return "", fmt.Errorf("kakao channel: recipient is empty")
	}

	messageID := fmt.Sprintf("kakao-%s", uuid.NewString())
	c.logger.Info("batch sent",
		"recipient", maskRecipient(recipient),
		"artifacts", len(artifacts),
		"provider_message_id", messageID,
	)
	return messageID, nil
}
