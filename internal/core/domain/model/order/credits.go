package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// ErrNoCredits is returned when a debit is attempted against a zero balance.
var ErrNoCredits = fmt.Errorf("no revision credits remaining")

// CreditKind identifies one of the fixed revision credit balances. Keeping
// the set closed (instead of an open string-keyed map) makes an unknown
// revision type a compile-time concern.
type CreditKind int

const (
	// CreditUnknown represents an invalid credit kind.
	CreditUnknown CreditKind = iota

	// CreditRegenImage pays for regenerating a single image.
	CreditRegenImage

	// CreditEditText pays for a text edit within a document.
	CreditEditText

	// CreditRewriteDoc pays for rewriting a whole document.
	CreditRewriteDoc
)

func getCreditKindStrings() map[CreditKind]string {
	return map[CreditKind]string{
		CreditRegenImage: "regen_image",
		CreditEditText:   "edit_text",
		CreditRewriteDoc: "rewrite_doc",
	}
}

// String returns the persisted key of the credit kind.
func (k CreditKind) String() string {
	if s, ok := getCreditKindStrings()[k]; ok {
		return s
	}
	return "unknown"
}

// Validate checks that the CreditKind is one of the defined kinds.
func (k CreditKind) Validate() error {
	if _, ok := getCreditKindStrings()[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("credit kind", fmt.Errorf("%d is not a valid credit kind", k))
	}
	return nil
}

// Credits holds the per-order revision entitlements. Balances never go
// negative: Debit fails on a zero balance instead of underflowing.
type Credits struct {
	RegenImage int
	EditText   int
	RewriteDoc int
}

// Balance returns the remaining count for a credit kind.
func (c Credits) Balance(kind CreditKind) int {
	switch kind {
	case CreditRegenImage:
		return c.RegenImage
	case CreditEditText:
		return c.EditText
	case CreditRewriteDoc:
		return c.RewriteDoc
	default:
		return 0
	}
}

// Debit consumes one credit of the given kind and returns the new balances.
// Returns ErrNoCredits when the balance is already zero.
func (c Credits) Debit(kind CreditKind) (Credits, error) {
	if err := kind.Validate(); err != nil {
		return c, err
	}
	if c.Balance(kind) <= 0 {
		return c, ErrNoCredits
	}
	switch kind {
	case CreditRegenImage:
		c.RegenImage--
	case CreditEditText:
		c.EditText--
	case CreditRewriteDoc:
		c.RewriteDoc--
	}
	return c, nil
}

// Map returns the balances keyed by their persisted names, used by the
// status endpoint and the JSONB column mapping.
func (c Credits) Map() map[string]int {
	return map[string]int{
		CreditRegenImage.String(): c.RegenImage,
		CreditEditText.String():   c.EditText,
		CreditRewriteDoc.String(): c.RewriteDoc,
	}
}

// CreditsFromMap reconstructs balances from their persisted form. Unknown
// keys are ignored; missing keys default to zero.
func CreditsFromMap(m map[string]int) Credits {
	return Credits{
		RegenImage: m[CreditRegenImage.String()],
		EditText:   m[CreditEditText.String()],
		RewriteDoc: m[CreditRewriteDoc.String()],
	}
}
