package handlers

import (
	"errors"
	"net/http"

	request "receitamed/internal/adapter/http/dto/request"
	response "receitamed/internal/adapter/http/dto/response"
	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase"
	"receitamed/pkg"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles HTTP requests for payments and manual reconciliation.
type PaymentHandler struct {
	usecase    usecase.IPaymentUseCase
	reconciler usecase.IReconciliationUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase, reconciler usecase.IReconciliationUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc, reconciler: reconciler}
}

// CreatePayment opens a payment for an approved request. The response carries
// the method-specific checkout material (pix codes or checkout URL).
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var payload request.CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	p, err := h.usecase.CreatePayment(c.Request.Context(), usecase.CreatePaymentInput{
		RequestID:  c.Param("request_id"),
		PatientID:  payload.PatientID,
		Method:     entities.PaymentMethod(payload.Method),
		PayerEmail: payload.PayerEmail,
		CardToken:  payload.CardToken,
	})
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusCreated, response.FromPayment(p))
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.usecase.GetByID(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(p))
}

func (h *PaymentHandler) ListPaymentsByRequest(c *gin.Context) {
	list, err := h.usecase.ListByRequestID(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromPayments(list))
}

func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	p, err := h.usecase.Refund(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(p))
}

// SyncPayment is the support escape hatch for lost webhooks: it re-reads the
// authoritative provider status for the request's pending payment and applies
// whatever the webhook would have applied.
func (h *PaymentHandler) SyncPayment(c *gin.Context) {
	outcome, err := h.reconciler.SyncPayment(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromReconcileOutcome(outcome))
}

func mapPaymentError(err error) *pkg.AppError {
	var stErr *entities.StateTransitionError
	switch {
	case errors.Is(err, usecase.ErrInvalidPaymentID),
		errors.Is(err, usecase.ErrInvalidRequestID),
		errors.Is(err, usecase.ErrInvalidPatientID),
		errors.Is(err, usecase.ErrMissingCardToken),
		errors.Is(err, entities.ErrInvalidPaymentMethod),
		errors.Is(err, entities.ErrInvalidPaymentAmount):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrRequestNotFound):
		return pkg.NewDomainErrorSimple("REQUEST_NOT_FOUND", "Request not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrRequestNotPayable):
		return pkg.NewDomainErrorSimple("REQUEST_NOT_PAYABLE", "Request is not awaiting payment", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentAlreadyPending):
		return pkg.NewDomainErrorSimple("PAYMENT_ALREADY_PENDING", "Request already has a pending payment", http.StatusConflict)
	case errors.As(err, &stErr):
		return pkg.NewDomainErrorSimple("ILLEGAL_TRANSITION", stErr.Error(), http.StatusConflict)
	case errors.Is(err, entities.ErrIllegalTransition):
		return pkg.NewDomainErrorSimple("ILLEGAL_TRANSITION", "Operation not allowed in current status", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentProviderFailed):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_FAILED", "Payment provider unavailable", http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
