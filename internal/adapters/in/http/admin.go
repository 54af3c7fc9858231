package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/application/usecases/queries"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// adminClaims is the JWT payload for admin access. Only the registered
// claims are used; the subject identifies the operator for audit logs.
type adminClaims struct {
	jwt.RegisteredClaims
}

// requireAdminToken validates a Bearer token and enforces HS256.
func (s *Server) requireAdminToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(authHeader)
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			return errorJSON(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		raw := strings.TrimSpace(header[len(bearerPrefix):])
		if raw == "" {
			return errorJSON(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
		}

		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		var claims adminClaims
		token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			return errorJSON(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
		}

		return next(ctx)
	}
}

type adminOrderResponse struct {
	OrderID    string     `json:"order_id"`
	PaymentID  string     `json:"payment_id"`
	Status     string     `json:"status"`
	Tier       string     `json:"tier"`
	Amount     int        `json:"amount"`
	Email      string     `json:"email"`
	FailReason string     `json:"fail_reason,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	GateScore  int        `json:"gate_score"`
	CreatedAt  time.Time  `json:"created_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

// AdminListOrders handles GET /api/v1/admin/orders with optional status,
// tier, limit and offset query parameters.
func (s *Server) AdminListOrders(ctx echo.Context) error {
	limit := intQueryParam(ctx, "limit")
	offset := intQueryParam(ctx, "offset")

	query, err := queries.NewAdminListOrdersQuery(
		ctx.QueryParam("status"), ctx.QueryParam("tier"), limit, offset)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	orders, err := s.adminListOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorJSON(ctx, http.StatusInternalServerError, "QUERY_FAILED", "failed to retrieve orders")
	}

	response := make([]adminOrderResponse, len(orders))
	for i, o := range orders {
		response[i] = adminOrderResponse{
			OrderID:    o.OrderID.String(),
			PaymentID:  o.PaymentID,
			Status:     o.Status,
			Tier:       o.Tier,
			Amount:     o.Amount,
			Email:      o.Email,
			FailReason: o.FailReason,
			LastError:  o.LastError,
			GateScore:  o.GateScore,
			CreatedAt:  o.CreatedAt,
			PaidAt:     o.PaidAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

type adminStatsResponse struct {
	TotalOrders int                       `json:"total_orders"`
	ByStatus    map[string]int            `json:"by_status"`
	ByTier      map[string]adminTierStats `json:"by_tier"`
	SuccessRate float64                   `json:"success_rate"`
}

type adminTierStats struct {
	Count   int `json:"count"`
	Revenue int `json:"revenue"`
}

// AdminStats handles GET /api/v1/admin/stats.
func (s *Server) AdminStats(ctx echo.Context) error {
	stats, err := s.adminStatsHandler.Handle(ctx.Request().Context(), queries.NewAdminStatsQuery())
	if err != nil {
		return errorJSON(ctx, http.StatusInternalServerError, "QUERY_FAILED", "failed to compute stats")
	}

	byTier := make(map[string]adminTierStats, len(stats.ByTier))
	for tier, ts := range stats.ByTier {
		byTier[tier] = adminTierStats{Count: ts.Count, Revenue: ts.Revenue}
	}

	return ctx.JSON(http.StatusOK, adminStatsResponse{
		TotalOrders: stats.TotalOrders,
		ByStatus:    stats.ByStatus,
		ByTier:      byTier,
		SuccessRate: stats.SuccessRate,
	})
}

// intQueryParam parses an integer query parameter, zero when absent or
// malformed. The query constructor applies defaults and caps.
func intQueryParam(ctx echo.Context, name string) int {
	value, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return 0
	}
	return value
}
