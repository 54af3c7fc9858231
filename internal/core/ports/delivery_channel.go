package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
)

// DeliveryChannel sends a batch of artifacts to a customer over one
// concrete channel. The pipeline tries channels in delivery.FallbackOrder
// until one succeeds.
type DeliveryChannel interface {
	// Channel identifies which channel this implementation serves.
	Channel() delivery.Channel

	// Recipient extracts the channel-specific address from a contact,
	// e.g. the email address or the phone number.
	Recipient(contact order.Contact) string

	// Send delivers the artifacts and returns the provider-side message
	// identifier on acceptance.
	Send(ctx context.Context, recipient string, artifacts []*artifact.Artifact) (string, error)
}
