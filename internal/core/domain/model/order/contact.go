package order

import (
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrContactIsNotConstructed is returned when a Contact was not created
// through the NewContact constructor.
var ErrContactIsNotConstructed = errs.NewValueIsRequiredError("Contact must be created via NewContact constructor")

// Contact holds the customer's delivery endpoints. Email is the primary
// channel and is required; phone enables the fallback channel and may be
// empty.
type Contact struct {
	email string
	phone string

	guard guard.ConstructorGuard
}

// NewContact creates a Contact. The email must be present and contain an
// "@"; anything stricter is the mail provider's problem.
func NewContact(email, phone string) (Contact, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Contact{}, errs.NewValueIsRequiredError("customer email")
	}
	if !strings.Contains(email, "@") {
		return Contact{}, errs.NewValueIsInvalidError("customer email")
	}

	return Contact{
		email: email,
		phone: strings.TrimSpace(phone),
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Contact was created through the constructor.
func (c Contact) Validate() error {
	return c.guard.Validate(ErrContactIsNotConstructed)
}

// Email returns the customer email address.
func (c Contact) Email() string {
	return c.email
}

// Phone returns the customer phone number, empty when not provided.
func (c Contact) Phone() string {
	return c.phone
}

// HasPhone reports whether the fallback channel is usable for this contact.
func (c Contact) HasPhone() bool {
	return c.phone != ""
}

// MaskedEmail returns the email with most of the local part hidden, for
// status responses and logs.
func (c Contact) MaskedEmail() string {
	local, domain, ok := strings.Cut(c.email, "@")
	if !ok {
		return c.email
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:2] + "***@" + domain
}
