package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRevisionRequest(t *testing.T, orderID kernel.UUID, kind order.CreditKind) commands.RequestRevisionCommand {
	t.Helper()
	cmd, err := commands.NewRequestRevisionCommand(orderID, revision.TargetStorybook, kind, "soften the wolf on page 4")
	require.NoError(t, err)
	return cmd
}

func TestRequestRevisionCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := t.Context()
	store := newMemStore()
	o := doneOrder(t, order.TierPlus)
	store.orders = append(store.orders, o)
	handler := commands.NewRequestRevisionCommandHandler(revisionUoWFactory{s: store})

	// Act
	rev, err := handler.Handle(ctx, newRevisionRequest(t, o.ID(), order.CreditRegenImage))

	// Assert
	require.NoError(t, err)
	require.NotNil(t, rev)
	assert.Equal(t, revision.StatusQueued, rev.Status())
	assert.Equal(t, 1, rev.CreditsDebited())
	assert.True(t, rev.OrderID().IsEqual(o.ID()))

	// PLUS starts with 3 regen_image credits; one is spent.
	assert.Equal(t, 2, o.Credits().Balance(order.CreditRegenImage))

	require.Len(t, store.revisions, 1)
	assert.True(t, store.hasEvent(o.ID(), event.RevisionRequested))
}

func TestRequestRevisionCommandHandler_Handle_OrderNotCompleted(t *testing.T) {
	// Arrange
	ctx := t.Context()
	store := newMemStore()
	o := queuedOrder(t, order.TierPlus, "")
	store.orders = append(store.orders, o)
	handler := commands.NewRequestRevisionCommandHandler(revisionUoWFactory{s: store})

	// Act
	_, err := handler.Handle(ctx, newRevisionRequest(t, o.ID(), order.CreditRegenImage))

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, order.ErrOrderNotCompleted)
	assert.Empty(t, store.revisions)
	assert.Equal(t, 3, o.Credits().Balance(order.CreditRegenImage))
}

func TestRequestRevisionCommandHandler_Handle_NoCredits(t *testing.T) {
	// Arrange: STARTER ships with zero revision credits.
	ctx := t.Context()
	store := newMemStore()
	o := doneOrder(t, order.TierStarter)
	store.orders = append(store.orders, o)
	handler := commands.NewRequestRevisionCommandHandler(revisionUoWFactory{s: store})

	// Act
	_, err := handler.Handle(ctx, newRevisionRequest(t, o.ID(), order.CreditRegenImage))

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, order.ErrNoCredits)
	assert.Empty(t, store.revisions)
}

func TestRequestRevisionCommandHandler_Handle_ExhaustsBalance(t *testing.T) {
	// Arrange: PREMIUM carries exactly one rewrite_doc credit.
	ctx := t.Context()
	store := newMemStore()
	o := doneOrder(t, order.TierPremium)
	store.orders = append(store.orders, o)
	handler := commands.NewRequestRevisionCommandHandler(revisionUoWFactory{s: store})

	_, err := handler.Handle(ctx, newRevisionRequest(t, o.ID(), order.CreditRewriteDoc))
	require.NoError(t, err)

	// Act: the second request hits an empty balance
	_, err = handler.Handle(ctx, newRevisionRequest(t, o.ID(), order.CreditRewriteDoc))

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, order.ErrNoCredits)
	assert.Len(t, store.revisions, 1)
	assert.Equal(t, 0, o.Credits().Balance(order.CreditRewriteDoc))
}

func TestRequestRevisionCommandHandler_Handle_OrderNotFound(t *testing.T) {
	// Arrange
	ctx := t.Context()
	store := newMemStore()
	handler := commands.NewRequestRevisionCommandHandler(revisionUoWFactory{s: store})

	// Act
	_, err := handler.Handle(ctx, newRevisionRequest(t, kernel.NewUUID(), order.CreditRegenImage))

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestRequestRevisionCommandHandler_Handle_InvalidCommand(t *testing.T) {
	ctx := t.Context()
	handler := commands.NewRequestRevisionCommandHandler(revisionUoWFactory{s: newMemStore()})
	var invalidCmd commands.RequestRevisionCommand

	_, err := handler.Handle(ctx, invalidCmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrRequestRevisionCommandIsNotConstructed)
}
