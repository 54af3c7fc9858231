package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrIngestPaymentCommandIsNotConstructed = errors.New(
		"IngestPaymentCommand must be created via NewIngestPaymentCommand constructor",
	)

	// ErrAmountMismatch is returned when the paid amount does not equal
	// the tier price. The payment collaborator is trusted to verify the
	// charge itself; this guards against tier/amount confusion.
	ErrAmountMismatch = errors.New("amount does not match tier price")
)

// IngestPaymentCommand represents one verified payment webhook delivery.
// The payment id is the idempotency key: redelivering the same webhook any
// number of times creates exactly one order.
type IngestPaymentCommand struct { //nolint:recvcheck //using for validation
	paymentID string
	tier      order.Tier
	amount    int
	contact   order.Contact
	userID    string
	wishID    string

	guard guard.ConstructorGuard
}

// NewIngestPaymentCommand creates a command from webhook fields. The tier
// must be known, the amount must equal the tier price, and the contact must
// carry a valid email. userID and wishID are optional correlation ids.
func NewIngestPaymentCommand(
	paymentID string,
	tier order.Tier,
	amount int,
	contact order.Contact,
	userID, wishID string,
) (IngestPaymentCommand, error) {
	cmd := IngestPaymentCommand{
		userID: userID,
		wishID: wishID,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setPaymentID(paymentID),
		cmd.setTierAmount(tier, amount),
		cmd.setContact(contact),
	); err != nil {
		return IngestPaymentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestPaymentCommand) Validate() error {
	return c.guard.Validate(ErrIngestPaymentCommandIsNotConstructed)
}

// PaymentID returns the external payment identifier.
func (c IngestPaymentCommand) PaymentID() string {
	return c.paymentID
}

// Tier returns the purchased tier.
func (c IngestPaymentCommand) Tier() order.Tier {
	return c.tier
}

// Amount returns the paid amount in KRW.
func (c IngestPaymentCommand) Amount() int {
	return c.amount
}

// Contact returns the customer's delivery endpoints.
func (c IngestPaymentCommand) Contact() order.Contact {
	return c.contact
}

// UserID returns the optional user correlation id.
func (c IngestPaymentCommand) UserID() string {
	return c.userID
}

// WishID returns the optional intake-form correlation id.
func (c IngestPaymentCommand) WishID() string {
	return c.wishID
}

func (c *IngestPaymentCommand) setPaymentID(paymentID string) error {
	if paymentID == "" {
		return errors.New("payment id is required")
	}

	c.paymentID = paymentID
	return nil
}

func (c *IngestPaymentCommand) setTierAmount(tier order.Tier, amount int) error {
	if err := tier.Validate(); err != nil {
		return err
	}
	if amount != tier.Price() {
		return ErrAmountMismatch
	}

	c.tier = tier
	c.amount = amount
	return nil
}

func (c *IngestPaymentCommand) setContact(contact order.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}

	c.contact = contact
	return nil
}
