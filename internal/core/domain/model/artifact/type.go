package artifact

import (
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// Type identifies one of the deliverable artifact kinds. Which kinds an
// order produces depends on its tier.
type Type int

const (
	// TypeUnknown represents an invalid or undefined artifact type.
	TypeUnknown Type = iota

	// TypeStorybookPDF is the main storybook document.
	TypeStorybookPDF

	// TypeMobileCards is the card-format image set for mobile viewing.
	TypeMobileCards

	// TypeWebtoonCuts is the individual webtoon panel set.
	TypeWebtoonCuts

	// TypeWebtoonCombined is the single stitched webtoon image.
	TypeWebtoonCombined

	// TypeDecisionMapPDF is the premium decision map document.
	TypeDecisionMapPDF

	// TypeRoadmapPDF is the premium roadmap document.
	TypeRoadmapPDF
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		TypeStorybookPDF:    "STORYBOOK_PDF",
		TypeMobileCards:     "MOBILE_CARDS",
		TypeWebtoonCuts:     "WEBTOON_CUTS",
		TypeWebtoonCombined: "WEBTOON_COMBINED",
		TypeDecisionMapPDF:  "DECISION_MAP_PDF",
		TypeRoadmapPDF:      "ROADMAP_PDF",
	}
}

// TypeFromString parses the persisted representation of an artifact type.
func TypeFromString(s string) (Type, error) {
	for typ, str := range getTypeStrings() {
		if str == s {
			return typ, nil
		}
	}
	return TypeUnknown, errs.NewValueIsInvalidErrorWithCause("artifact type", fmt.Errorf("%q is not a known artifact type", s))
}

// String returns the persisted name of the artifact type.
func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that the Type is one of the defined kinds.
func (t Type) Validate() error {
	if _, ok := getTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("artifact type", fmt.Errorf("%d is not a valid artifact type", t))
	}
	return nil
}

// TypesForTier returns the artifact kinds an order of the given tier
// produces. Higher tiers are supersets of lower ones.
func TypesForTier(tier order.Tier) []Type {
	types := []Type{TypeStorybookPDF, TypeMobileCards}
	if tier == order.TierPlus || tier == order.TierPremium {
		types = append(types, TypeWebtoonCuts, TypeWebtoonCombined)
	}
	if tier == order.TierPremium {
		types = append(types, TypeDecisionMapPDF, TypeRoadmapPDF)
	}
	return types
}
