package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// AdminStatsQueryHandler computes aggregate order statistics for the admin
// dashboard. The aggregation runs in the database; only the success rate is
// derived in Go from the per-status counts.
type AdminStatsQueryHandler struct {
	db *gorm.DB
}

// NewAdminStatsQueryHandler creates a handler for aggregate statistics.
func NewAdminStatsQueryHandler(db *gorm.DB) AdminStatsQueryHandler {
	return AdminStatsQueryHandler{db: db}
}

// Handle executes the aggregation. Tier revenue counts paid orders only,
// so pending webhook retries do not inflate the numbers.
func (h AdminStatsQueryHandler) Handle(
	ctx context.Context,
	query AdminStatsQuery,
) (AdminStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return AdminStatsQueryResponse{}, err
	}

	response := AdminStatsQueryResponse{
		ByStatus: make(map[string]int),
		ByTier:   make(map[string]TierStats),
	}

	if err := h.aggregateByStatus(ctx, &response); err != nil {
		return AdminStatsQueryResponse{}, err
	}
	if err := h.aggregateByTier(ctx, &response); err != nil {
		return AdminStatsQueryResponse{}, err
	}

	response.SuccessRate = successRate(response.ByStatus)

	return response, nil
}

func (h AdminStatsQueryHandler) aggregateByStatus(
	ctx context.Context,
	response *AdminStatsQueryResponse,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			COUNT(*)
		FROM orders
		GROUP BY status
	`).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			return err
		}
		response.ByStatus[status] = count
		response.TotalOrders += count
	}

	return rows.Err()
}

func (h AdminStatsQueryHandler) aggregateByTier(
	ctx context.Context,
	response *AdminStatsQueryResponse,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			tier,
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE paid_at IS NOT NULL), 0)
		FROM orders
		GROUP BY tier
	`).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tier string
		var stats TierStats
		if err = rows.Scan(&tier, &stats.Count, &stats.Revenue); err != nil {
			return err
		}
		response.ByTier[tier] = stats
	}

	return rows.Err()
}

// successRate is DONE orders over all terminal orders. Orders still in
// flight are excluded so a busy queue does not read as failure.
func successRate(byStatus map[string]int) float64 {
	var done, terminal int
	for status, count := range byStatus {
		parsed, err := order.StatusFromString(status)
		if err != nil || !parsed.IsTerminal() {
			continue
		}
		terminal += count
		if parsed == order.Done {
			done += count
		}
	}

	if terminal == 0 {
		return 0
	}
	return float64(done) / float64(terminal)
}
