package revision

import (
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// TargetDoc names the document family a revision applies to.
type TargetDoc int

const (
	// TargetUnknown represents an invalid or undefined target.
	TargetUnknown TargetDoc = iota

	// TargetStorybook targets the storybook PDF and its pages.
	TargetStorybook

	// TargetWebtoon targets the webtoon cuts or the combined strip.
	TargetWebtoon

	// TargetDecisionMap targets the premium decision map document.
	TargetDecisionMap

	// TargetRoadmap targets the premium roadmap document.
	TargetRoadmap
)

func getTargetDocStrings() map[TargetDoc]string {
	return map[TargetDoc]string{
		TargetStorybook:   "STORYBOOK",
		TargetWebtoon:     "WEBTOON",
		TargetDecisionMap: "DECISION_MAP",
		TargetRoadmap:     "ROADMAP",
	}
}

// TargetDocFromString parses the wire representation of a revision target.
func TargetDocFromString(s string) (TargetDoc, error) {
	for target, str := range getTargetDocStrings() {
		if str == s {
			return target, nil
		}
	}
	return TargetUnknown, errs.NewValueIsInvalidErrorWithCause("target doc", fmt.Errorf("%q is not a known target doc", s))
}

// String returns the wire name of the target.
func (t TargetDoc) String() string {
	if str, ok := getTargetDocStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that the TargetDoc is one of the defined targets.
func (t TargetDoc) Validate() error {
	if _, ok := getTargetDocStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("target doc", fmt.Errorf("%d is not a valid target doc", t))
	}
	return nil
}

func getTypeStrings() map[order.CreditKind]string {
	return map[order.CreditKind]string{
		order.CreditRegenImage: "REGEN_IMAGE",
		order.CreditEditText:   "EDIT_TEXT",
		order.CreditRewriteDoc: "REWRITE_DOC",
	}
}

// TypeFromString parses the wire representation of a revision type into the
// credit kind that pays for it.
func TypeFromString(s string) (order.CreditKind, error) {
	for kind, str := range getTypeStrings() {
		if str == s {
			return kind, nil
		}
	}
	return order.CreditUnknown, errs.NewValueIsInvalidErrorWithCause("revision type", fmt.Errorf("%q is not a known revision type", s))
}

// TypeString returns the wire name of a revision type.
func TypeString(kind order.CreditKind) string {
	if str, ok := getTypeStrings()[kind]; ok {
		return str
	}
	return "UNKNOWN"
}
