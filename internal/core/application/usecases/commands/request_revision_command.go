package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrRequestRevisionCommandIsNotConstructed = errors.New(
		"RequestRevisionCommand must be created via NewRequestRevisionCommand constructor",
	)
	ErrUserRequestIsRequired = errors.New("user request is required")
)

// RequestRevisionCommand represents a customer's post-delivery change
// request against a completed order.
type RequestRevisionCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	targetDoc   revision.TargetDoc
	kind        order.CreditKind
	userRequest string

	guard guard.ConstructorGuard
}

// NewRequestRevisionCommand creates a revision request command. The kind
// names the credit balance that will pay for it.
func NewRequestRevisionCommand(
	orderID kernel.UUID,
	targetDoc revision.TargetDoc,
	kind order.CreditKind,
	userRequest string,
) (RequestRevisionCommand, error) {
	cmd := RequestRevisionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTargetDoc(targetDoc),
		cmd.setKind(kind),
		cmd.setUserRequest(userRequest),
	); err != nil {
		return RequestRevisionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestRevisionCommand) Validate() error {
	return c.guard.Validate(ErrRequestRevisionCommandIsNotConstructed)
}

// OrderID returns the order the revision targets.
func (c RequestRevisionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TargetDoc returns the document family the change applies to.
func (c RequestRevisionCommand) TargetDoc() revision.TargetDoc {
	return c.targetDoc
}

// Kind returns the credit kind that pays for the revision.
func (c RequestRevisionCommand) Kind() order.CreditKind {
	return c.kind
}

// UserRequest returns the customer's instructions.
func (c RequestRevisionCommand) UserRequest() string {
	return c.userRequest
}

func (c *RequestRevisionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RequestRevisionCommand) setTargetDoc(targetDoc revision.TargetDoc) error {
	if err := targetDoc.Validate(); err != nil {
		return err
	}

	c.targetDoc = targetDoc
	return nil
}

func (c *RequestRevisionCommand) setKind(kind order.CreditKind) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	c.kind = kind
	return nil
}

func (c *RequestRevisionCommand) setUserRequest(userRequest string) error {
	if userRequest == "" {
		return ErrUserRequestIsRequired
	}

	c.userRequest = userRequest
	return nil
}
