package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// signatureHeader carries the hex-encoded HMAC-SHA256 of the raw body.
const signatureHeader = "X-Signature"

type paymentWebhookRequest struct {
	Event         string `json:"event" validate:"required"`
	PaymentID     string `json:"payment_id" validate:"required"`
	Tier          string `json:"tier" validate:"required"`
	Amount        int    `json:"amount" validate:"gt=0"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone"`
	UserID        string `json:"user_id"`
	WishID        string `json:"wish_id"`
}

type paymentWebhookResponse struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	JobID         string `json:"job_id,omitempty"`
	EstimatedTime string `json:"estimated_time,omitempty"`
}

// PaymentWebhook handles POST /api/v1/webhook/payment. The signature is
// verified against the raw body before anything else happens, so a forged
// request never touches order state. Redeliveries of the same payment_id
// come back 200 instead of 201.
func (s *Server) PaymentWebhook(ctx echo.Context) error {
	metrics.WebhookRequestsTotal.Inc()

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_BODY", "failed to read request body")
	}

	if !verifySignature(body, ctx.Request().Header.Get(signatureHeader), s.webhookSecret) {
		metrics.WebhookRejectedTotal.Inc()
		return errorJSON(ctx, http.StatusUnauthorized, "SIGNATURE_INVALID", "missing or invalid signature")
	}

	var req paymentWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}
	if req.Event != event.PaySuccess {
		// Gateways deliver other lifecycle events on the same hook; only
		// successful payments create orders.
		return ctx.JSON(http.StatusOK, map[string]string{"status": "IGNORED"})
	}

	tier, err := order.TierFromString(req.Tier)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}
	contact, err := order.NewContact(req.CustomerEmail, req.CustomerPhone)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	cmd, err := commands.NewIngestPaymentCommand(
		req.PaymentID, tier, req.Amount, contact, req.UserID, req.WishID)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	result, err := s.ingestPaymentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorJSON(ctx, http.StatusInternalServerError, "INTAKE_FAILED", "failed to ingest payment")
	}

	if result.IsDuplicate {
		metrics.WebhookDuplicatesTotal.Inc()
		return ctx.JSON(http.StatusOK, paymentWebhookResponse{
			OrderID: result.Order.ID().String(),
			Status:  result.Order.Status().String(),
		})
	}

	return ctx.JSON(http.StatusCreated, paymentWebhookResponse{
		OrderID:       result.Order.ID().String(),
		Status:        result.Order.Status().String(),
		JobID:         result.Job.ID().String(),
		EstimatedTime: result.Order.Tier().EstimatedTime(),
	})
}

// verifySignature compares the hex HMAC-SHA256 of body in constant time.
func verifySignature(body []byte, signature string, secret []byte) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
