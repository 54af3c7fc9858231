// Package notification provides the built-in DeliveryChannel
// implementations. They accept every well-formed send and fabricate a
// provider message identifier; real provider integrations replace them
// behind the same port.
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

// EmailChannel delivers artifact batches to the customer's email address.
type EmailChannel struct {
	logger *slog.Logger
}

// NewEmailChannel creates the email channel.
func NewEmailChannel(logger *slog.Logger) *EmailChannel {
	return &EmailChannel{logger: logger.With("component", "email-channel")}
}

// Channel identifies this implementation.
func (c *EmailChannel) Channel() delivery.Channel {
	return delivery.ChannelEmail
}

// Recipient extracts the email address from the contact.
func (c *EmailChannel) Recipient(contact order.Contact) string {
	return contact.Email()
}

// Send accepts the batch and returns a fabricated provider message id.
func (c *EmailChannel) Send(ctx context.Context, recipient string, artifacts []*artifact.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if recipient == "" {
		return "", fmt.Errorf("email channel: recipient is empty")
	}

	messageID := fmt.Sprintf("email-%s", uuid.NewString())
	c.logger.Info("batch sent",
		"recipient", maskRecipient(recipient),
		"artifacts", len(artifacts),
		"provider_message_id", messageID,
	)
	return messageID, nil
}

// maskRecipient keeps contact details out of the logs.
func maskRecipient(recipient string) string {
	if len(recipient) <= 4 {
		return "***"
	}
	return recipient[:2] + "***" + recipient[len(recipient)-2:]
}
