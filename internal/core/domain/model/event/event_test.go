package event_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventNames(t *testing.T) {
	t.Run("should derive state and side effect names", func(t *testing.T) {
		assert.Equal(t, "status_generating", event.StatusChanged("GENERATING"))
		assert.Equal(t, "asset_generated_premium", event.AssetGenerated("PREMIUM"))
		assert.Equal(t, "delivery_email_sent", event.DeliverySent("EMAIL"))
		assert.Equal(t, "delivery_kakao_sent", event.DeliverySent("KAKAO"))
	})
}

func TestEvent_New(t *testing.T) {
	t.Run("should create a timeline entry", func(t *testing.T) {
		e, err := event.NewEvent(kernel.NewUUID(), kernel.NewUUID(), event.PaySuccess, map[string]any{
			"payment_id": "pay_1",
			"amount":     24900,
		})

		require.NoError(t, err)
		assert.NoError(t, e.Validate())
		assert.Equal(t, "pay_success", e.Name())
		assert.Equal(t, 24900, e.Payload()["amount"])
		assert.False(t, e.CreatedAt().IsZero())
	})

	t.Run("should allow a nil payload", func(t *testing.T) {
		e, err := event.NewEvent(kernel.NewUUID(), kernel.NewUUID(), event.JobStarted, nil)

		require.NoError(t, err)
		assert.Nil(t, e.Payload())
	})

	t.Run("should require a name", func(t *testing.T) {
		_, err := event.NewEvent(kernel.NewUUID(), kernel.NewUUID(), "", nil)
		require.Error(t, err)
	})

	t.Run("should reject a zero-value event", func(t *testing.T) {
		var e event.Event
		assert.ErrorIs(t, e.Validate(), event.ErrEventIsNotConstructed)
	})
}
