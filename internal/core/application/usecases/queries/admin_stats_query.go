package queries

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrAdminStatsQueryIsNotConstructed = errors.New(
		"AdminStatsQuery must be created via NewAdminStatsQuery constructor",
	)
)

// AdminStatsQuery retrieves aggregate order counts and revenue for the
// admin dashboard.
//
// Example:
//
//	query := NewAdminStatsQuery()
//	stats, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("%d orders, %.1f%% delivered\n", stats.TotalOrders, stats.SuccessRate*100)
type AdminStatsQuery struct {
	guard guard.ConstructorGuard
}

// NewAdminStatsQuery creates a query for aggregate order statistics.
// This is a parameterless query over the whole order table.
func NewAdminStatsQuery() AdminStatsQuery {
	return AdminStatsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q AdminStatsQuery) Validate() error {
	return q.guard.Validate(ErrAdminStatsQueryIsNotConstructed)
}

// TierStats aggregates one tier's order count and paid revenue.
type TierStats struct {
	Count   int
	Revenue int
}

// AdminStatsQueryResponse is the aggregate read model for the dashboard.
// SuccessRate is DONE orders over all orders that reached a terminal
// status, 0 when nothing is terminal yet.
type AdminStatsQueryResponse struct {
	TotalOrders int
	ByStatus    map[string]int
	ByTier      map[string]TierStats
	SuccessRate float64
}
