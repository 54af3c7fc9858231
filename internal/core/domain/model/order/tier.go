package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Tier is the purchased product tier. It determines the price, the
// generation cost budget and the number of revision credits seeded on the
// order.
type Tier int

const (
	// TierUnknown represents an invalid or undefined tier.
	TierUnknown Tier = iota

	// TierStarter is the entry tier: storybook PDF plus mobile cards.
	TierStarter

	// TierPlus adds the webtoon artifacts and a small revision allowance.
	TierPlus

	// TierPremium adds the decision map and roadmap documents and the
	// largest revision allowance.
	TierPremium
)

// Budget is the per-order generation cost ceiling. Exceeding either limit
// is a non-retryable failure: re-running a non-deterministic generator
// against the same ceiling is assumed futile.
type Budget struct {
	Tokens int
	Images int
}

func getTierStrings() map[Tier]string {
	return map[Tier]string{
		TierStarter: "STARTER",
		TierPlus:    "PLUS",
		TierPremium: "PREMIUM",
	}
}

// TierFromString parses the wire representation of a tier. Unknown values
// are rejected; callers surface this as an INVALID_TIER error.
func TierFromString(s string) (Tier, error) {
	for tier, str := range getTierStrings() {
		if str == s {
			return tier, nil
		}
	}
	return TierUnknown, errs.NewValueIsInvalidErrorWithCause("tier", fmt.Errorf("%q is not a known tier", s))
}

// String returns the wire name of the tier.
func (t Tier) String() string {
	if str, ok := getTierStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that the Tier is one of the three known tiers.
func (t Tier) Validate() error {
	if _, ok := getTierStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("tier", fmt.Errorf("%d is not a valid tier", t))
	}
	return nil
}

// Price returns the expected payment amount for the tier in KRW.
func (t Tier) Price() int {
	switch t {
	case TierStarter:
		return 24900
	case TierPlus:
		return 49900
	case TierPremium:
		return 99000
	default:
		return 0
	}
}

// GenerationBudget returns the token and image ceilings enforced after the
// generation stage.
func (t Tier) GenerationBudget() Budget {
	switch t {
	case TierPlus:
		return Budget{Tokens: 15000, Images: 12}
	case TierPremium:
		return Budget{Tokens: 25000, Images: 12}
	default:
		return Budget{Tokens: 10000, Images: 5}
	}
}

// InitialCredits returns the revision credit balances seeded on a new order.
// Starter orders carry no credits.
func (t Tier) InitialCredits() Credits {
	switch t {
	case TierPlus:
		return Credits{RegenImage: 3, EditText: 1, RewriteDoc: 0}
	case TierPremium:
		return Credits{RegenImage: 8, EditText: 3, RewriteDoc: 1}
	default:
		return Credits{}
	}
}

// EstimatedTime is the customer-facing generation time estimate.
func (t Tier) EstimatedTime() string {
	switch t {
	case TierStarter:
		return "3~5m"
	case TierPlus:
		return "5~8m"
	case TierPremium:
		return "8~12m"
	default:
		return "5m"
	}
}
