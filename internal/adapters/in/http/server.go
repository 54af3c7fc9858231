// Package http exposes the fulfillment pipeline over a REST API: the
// payment webhook that feeds the queue, customer-facing status and asset
// views, revision requests and the admin surface.
package http

import (
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// validate checks inbound request bodies against their struct tags.
var validate = validator.New()

// Error is the uniform JSON error body returned by every endpoint.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorJSON(ctx echo.Context, status int, code, message string) error {
	return ctx.JSON(status, Error{Code: code, Message: message})
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	ingestPaymentHandler   commands.IngestPaymentCommandHandler
	requestRevisionHandler commands.RequestRevisionCommandHandler
	trackEngagementHandler commands.TrackEngagementCommandHandler

	// Query handlers
	getOrderStatusHandler  queries.GetOrderStatusQueryHandler
	listArtifactsHandler   queries.ListArtifactsQueryHandler
	adminListOrdersHandler queries.AdminListOrdersQueryHandler
	adminStatsHandler      queries.AdminStatsQueryHandler
	getQueueDepthHandler   queries.GetQueueDepthQueryHandler

	webhookSecret []byte
	jwtSecret     []byte

	db *gorm.DB
}

// NewServer creates the HTTP server with the required command and query
// handlers. The database handle is only used by the health endpoint.
func NewServer(
	ingestPaymentHandler commands.IngestPaymentCommandHandler,
	requestRevisionHandler commands.RequestRevisionCommandHandler,
	trackEngagementHandler commands.TrackEngagementCommandHandler,
	getOrderStatusHandler queries.GetOrderStatusQueryHandler,
	listArtifactsHandler queries.ListArtifactsQueryHandler,
	adminListOrdersHandler queries.AdminListOrdersQueryHandler,
	adminStatsHandler queries.AdminStatsQueryHandler,
	getQueueDepthHandler queries.GetQueueDepthQueryHandler,
	webhookSecret []byte,
	jwtSecret []byte,
	db *gorm.DB,
) *Server {
	return &Server{
		ingestPaymentHandler:   ingestPaymentHandler,
		requestRevisionHandler: requestRevisionHandler,
		trackEngagementHandler: trackEngagementHandler,
		getOrderStatusHandler:  getOrderStatusHandler,
		listArtifactsHandler:   listArtifactsHandler,
		adminListOrdersHandler: adminListOrdersHandler,
		adminStatsHandler:      adminStatsHandler,
		getQueueDepthHandler:   getQueueDepthHandler,
		webhookSecret:          webhookSecret,
		jwtSecret:              jwtSecret,
		db:                     db,
	}
}

// RegisterRoutes attaches every endpoint to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/webhook/payment", s.PaymentWebhook)

	e.GET("/api/v1/orders/:orderID", s.GetOrderStatus)
	e.GET("/api/v1/orders/:orderID/assets", s.GetOrderAssets)
	e.POST("/api/v1/orders/:orderID/revision", s.RequestRevision)
	e.POST("/api/v1/orders/:orderID/download", s.TrackDownload)

	admin := e.Group("/api/v1/admin", s.requireAdminToken)
	admin.GET("/orders", s.AdminListOrders)
	admin.GET("/stats", s.AdminStats)

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
