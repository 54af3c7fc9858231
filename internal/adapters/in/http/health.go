package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status          string `json:"status"`
	QueuedJobs      int    `json:"queued_jobs"`
	ProcessingJobs  int    `json:"processing_jobs"`
	QueuedRevisions int    `json:"queued_revisions"`
}

// Health handles GET /health. Reports database reachability and the depth
// of the work queues, so a stuck drain loop shows up as growing numbers
// long before customers notice.
func (s *Server) Health(ctx echo.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
	}
	if err := sqlDB.PingContext(ctx.Request().Context()); err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
	}

	depth, err := s.getQueueDepthHandler.Handle(ctx.Request().Context(), queries.NewGetQueueDepthQuery())
	if err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
	}

	return ctx.JSON(http.StatusOK, healthResponse{
		Status:          "ok",
		QueuedJobs:      depth.QueuedJobs,
		ProcessingJobs:  depth.ProcessingJobs,
		QueuedRevisions: depth.QueuedRevisions,
	})
}
