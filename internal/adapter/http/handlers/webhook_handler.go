package handlers

import (
	"errors"
	"net/http"

	response "receitamed/internal/adapter/http/dto/response"
	"receitamed/internal/usecase"
	"receitamed/pkg"

	"github.com/gin-gonic/gin"
)

// WebhookHandler ingests payment provider notifications. The body is passed
// through raw: the use case owns parsing, dedup, signature validation and
// reconciliation. Everything after event persistence is acknowledged with 200
// even when processing fails, so the provider does not retry what we already
// recorded.
type WebhookHandler struct {
	usecase usecase.IWebhookUseCase
}

func NewWebhookHandler(uc usecase.IWebhookUseCase) *WebhookHandler {
	return &WebhookHandler{usecase: uc}
}

func (h *WebhookHandler) ReceivePaymentNotification(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Unreadable request body", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	ack, err := h.usecase.Ingest(c.Request.Context(), usecase.WebhookInput{
		Body:          body,
		Query:         c.Request.URL.Query(),
		Headers:       headers,
		SourceIP:      c.ClientIP(),
		ContentType:   c.ContentType(),
		ContentLength: c.Request.ContentLength,
	})
	if err != nil {
		appErr := mapWebhookError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromWebhookAck(ack))
}

func mapWebhookError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrWebhookPaymentIDMissing):
		return pkg.NewDomainErrorSimple("INVALID_NOTIFICATION", "Notification carries no payment identifier", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrWebhookSignatureInvalid):
		return pkg.NewDomainErrorSimple("INVALID_SIGNATURE", "Notification signature mismatch", http.StatusUnauthorized)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
