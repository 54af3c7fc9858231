package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Channel identifies a way of reaching the customer with their artifacts.
type Channel int

const (
	// ChannelUnknown represents an invalid or undefined channel.
	ChannelUnknown Channel = iota

	// ChannelEmail is the primary channel.
	ChannelEmail

	// ChannelKakao is the fallback messaging channel, usable only when the
	// customer left a phone number.
	ChannelKakao
)

func getChannelStrings() map[Channel]string {
	return map[Channel]string{
		ChannelEmail: "EMAIL",
		ChannelKakao: "KAKAO",
	}
}

// ChannelFromString parses the persisted representation of a channel.
func ChannelFromString(s string) (Channel, error) {
	for channel, str := range getChannelStrings() {
		if str == s {
			return channel, nil
		}
	}
	return ChannelUnknown, errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("%q is not a known channel", s))
}

// String returns the persisted name of the channel.
func (c Channel) String() string {
	if str, ok := getChannelStrings()[c]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that the Channel is one of the defined channels.
func (c Channel) Validate() error {
	if _, ok := getChannelStrings()[c]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("%d is not a valid channel", c))
	}
	return nil
}

// FallbackOrder returns the channels to try, primary first. The fallback
// channel is only included when the contact has a phone number.
func FallbackOrder(hasPhone bool) []Channel {
	if hasPhone {
		return []Channel{ChannelEmail, ChannelKakao}
	}
	return []Channel{ChannelEmail}
}
