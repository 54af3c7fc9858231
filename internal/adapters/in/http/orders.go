package http

import (
	"errors"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

type timelineEntryResponse struct {
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

type artifactResponse struct {
	ArtifactID string    `json:"artifact_id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	SizeBytes  int64     `json:"size_bytes"`
	ExpiresAt  time.Time `json:"expires_at"`
	Expired    bool      `json:"expired"`
}

type orderStatusResponse struct {
	OrderID     string                  `json:"order_id"`
	Status      string                  `json:"status"`
	Tier        string                  `json:"tier"`
	Amount      int                     `json:"amount"`
	Email       string                  `json:"email"`
	FailReason  string                  `json:"fail_reason,omitempty"`
	Credits     map[string]int          `json:"credits_remaining"`
	CreatedAt   time.Time               `json:"created_at"`
	PaidAt      *time.Time              `json:"paid_at,omitempty"`
	DeliveredAt *time.Time              `json:"delivered_at,omitempty"`
	Timeline    []timelineEntryResponse `json:"timeline"`
	Artifacts   []artifactResponse      `json:"artifacts"`
}

// GetOrderStatus handles GET /api/v1/orders/:orderID.
func (s *Server) GetOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_ORDER_ID", "order id is not a valid UUID")
	}

	query, err := queries.NewGetOrderStatusQuery(orderID)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_ORDER_ID", err.Error())
	}

	status, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errorJSON(ctx, http.StatusNotFound, "ORDER_NOT_FOUND", "no order with this id")
		}
		return errorJSON(ctx, http.StatusInternalServerError, "QUERY_FAILED", "failed to retrieve order status")
	}

	timeline := make([]timelineEntryResponse, len(status.Timeline))
	for i, entry := range status.Timeline {
		timeline[i] = timelineEntryResponse{Name: entry.Name, OccurredAt: entry.OccurredAt}
	}

	return ctx.JSON(http.StatusOK, orderStatusResponse{
		OrderID:     status.OrderID.String(),
		Status:      status.Status,
		Tier:        status.Tier,
		Amount:      status.Amount,
		Email:       status.MaskedEmail,
		FailReason:  status.FailReason,
		Credits:     status.Credits,
		CreatedAt:   status.CreatedAt,
		PaidAt:      status.PaidAt,
		DeliveredAt: status.DeliveredAt,
		Timeline:    timeline,
		Artifacts:   artifactResponses(status.Artifacts),
	})
}

// GetOrderAssets handles GET /api/v1/orders/:orderID/assets. Every view is
// recorded on the order's timeline.
func (s *Server) GetOrderAssets(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_ORDER_ID", "order id is not a valid UUID")
	}

	if err := s.trackEngagement(ctx, orderID, event.AssetsViewed); err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errorJSON(ctx, http.StatusNotFound, "ORDER_NOT_FOUND", "no order with this id")
		}
		return errorJSON(ctx, http.StatusInternalServerError, "QUERY_FAILED", "failed to record view")
	}

	artifacts, err := s.listArtifacts(ctx, orderID)
	if err != nil {
		return errorJSON(ctx, http.StatusInternalServerError, "QUERY_FAILED", "failed to retrieve assets")
	}

	return ctx.JSON(http.StatusOK, map[string][]artifactResponse{
		"artifacts": artifactResponses(artifacts),
	})
}

type revisionRequest struct {
	TargetDoc    string `json:"target_doc" validate:"required"`
	RevisionType string `json:"revision_type" validate:"required"`
	UserRequest  string `json:"user_request" validate:"required"`
}

type revisionResponse struct {
	RevisionID     string `json:"revision_id"`
	TargetDoc      string `json:"target_doc"`
	RevisionType   string `json:"revision_type"`
	Status         string `json:"status"`
	CreditsDebited int    `json:"credits_debited"`
}

// RequestRevision handles POST /api/v1/orders/:orderID/revision. The credit
// debit and the revision insert are one atomic unit, so a rejected request
// never costs a credit.
func (s *Server) RequestRevision(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_ORDER_ID", "order id is not a valid UUID")
	}

	var req revisionRequest
	if err := ctx.Bind(&req); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	targetDoc, err := revision.TargetDocFromString(req.TargetDoc)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "UNKNOWN_TARGET_DOC", err.Error())
	}
	kind, err := revision.TypeFromString(req.RevisionType)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "UNKNOWN_REVISION_TYPE", err.Error())
	}

	cmd, err := commands.NewRequestRevisionCommand(orderID, targetDoc, kind, req.UserRequest)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	rev, err := s.requestRevisionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNoCredits):
			return errorJSON(ctx, http.StatusConflict, "NO_CREDITS", "no revision credits remaining for this type")
		case errors.Is(err, order.ErrOrderNotCompleted):
			return errorJSON(ctx, http.StatusConflict, "ORDER_NOT_COMPLETED", "revisions are only accepted for completed orders")
		case errors.Is(err, errs.ErrObjectNotFound):
			return errorJSON(ctx, http.StatusNotFound, "ORDER_NOT_FOUND", "no order with this id")
		default:
			return errorJSON(ctx, http.StatusInternalServerError, "REVISION_FAILED", "failed to create revision")
		}
	}

	metrics.RevisionRequestsTotal.Inc()

	return ctx.JSON(http.StatusCreated, revisionResponse{
		RevisionID:     rev.ID().String(),
		TargetDoc:      rev.TargetDoc().String(),
		RevisionType:   revision.TypeString(rev.Kind()),
		Status:         rev.Status().String(),
		CreditsDebited: rev.CreditsDebited(),
	})
}

// TrackDownload handles POST /api/v1/orders/:orderID/download. Clicks are
// recorded even for expired links; the response tells the customer whether
// anything is still downloadable.
func (s *Server) TrackDownload(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_ORDER_ID", "order id is not a valid UUID")
	}

	if err := s.trackEngagement(ctx, orderID, event.DownloadClicked); err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errorJSON(ctx, http.StatusNotFound, "ORDER_NOT_FOUND", "no order with this id")
		}
		return errorJSON(ctx, http.StatusInternalServerError, "QUERY_FAILED", "failed to record click")
	}

	artifacts, err := s.listArtifacts(ctx, orderID)
	if err != nil {
		return errorJSON(ctx, http.StatusInternalServerError, "QUERY_FAILED", "failed to retrieve assets")
	}
	if len(artifacts) == 0 {
		return errorJSON(ctx, http.StatusNotFound, "NO_ASSETS", "nothing has been stored for this order")
	}

	live := make([]queries.ArtifactView, 0, len(artifacts))
	for _, a := range artifacts {
		if !a.Expired {
			live = append(live, a)
		}
	}
	if len(live) == 0 {
		return errorJSON(ctx, http.StatusGone, "ASSETS_EXPIRED", "the download links for this order have expired")
	}

	return ctx.JSON(http.StatusOK, map[string][]artifactResponse{
		"artifacts": artifactResponses(live),
	})
}

func (s *Server) trackEngagement(ctx echo.Context, orderID kernel.UUID, eventName string) error {
	cmd, err := commands.NewTrackEngagementCommand(orderID, eventName)
	if err != nil {
		return err
	}
	return s.trackEngagementHandler.Handle(ctx.Request().Context(), cmd)
}

func (s *Server) listArtifacts(ctx echo.Context, orderID kernel.UUID) ([]queries.ArtifactView, error) {
	query, err := queries.NewListArtifactsQuery(orderID)
	if err != nil {
		return nil, err
	}
	return s.listArtifactsHandler.Handle(ctx.Request().Context(), query)
}

func artifactResponses(artifacts []queries.ArtifactView) []artifactResponse {
	response := make([]artifactResponse, len(artifacts))
	for i, a := range artifacts {
		response[i] = artifactResponse{
			ArtifactID: a.ArtifactID.String(),
			Type:       a.Type,
			Name:       a.Name,
			URI:        a.URI,
			SizeBytes:  a.SizeBytes,
			ExpiresAt:  a.ExpiresAt,
			Expired:    a.Expired,
		}
	}
	return response
}
