package handlers

import (
	"errors"
	"net/http"

	request "receitamed/internal/adapter/http/dto/request"
	response "receitamed/internal/adapter/http/dto/response"
	"receitamed/internal/domain/compliance"
	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase"
	"receitamed/pkg"

	"github.com/gin-gonic/gin"
)

// SignatureHandler triggers the digital signature workflow for paid requests.
type SignatureHandler struct {
	usecase usecase.ISignatureUseCase
}

func NewSignatureHandler(uc usecase.ISignatureUseCase) *SignatureHandler {
	return &SignatureHandler{usecase: uc}
}

func (h *SignatureHandler) SignDocument(c *gin.Context) {
	var payload request.SignDocumentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	r, err := h.usecase.SignRequest(c.Request.Context(), c.Param("request_id"), payload.CertificatePassword)
	if err != nil {
		appErr := mapSignatureError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromRequest(r))
}

func mapSignatureError(err error) *pkg.AppError {
	var compErr *compliance.ComplianceError
	var stErr *entities.StateTransitionError
	switch {
	case errors.As(err, &compErr):
		// The doctor needs the precise field list to fix the document.
		return pkg.NewDomainErrorSimple("COMPLIANCE_FAILED", "Prescription does not meet regulatory requirements", http.StatusUnprocessableEntity).
			WithDetails(gin.H{
				"category":       string(compErr.Category),
				"missing_fields": compErr.MissingFields,
				"messages":       compErr.Messages,
			})
	case errors.Is(err, usecase.ErrInvalidRequestID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrRequestNotFound):
		return pkg.NewDomainErrorSimple("REQUEST_NOT_FOUND", "Request not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrNoActiveCertificate):
		return pkg.NewDomainErrorSimple("NO_ACTIVE_CERTIFICATE", "Doctor has no active signing certificate", http.StatusConflict)
	case errors.As(err, &stErr):
		return pkg.NewDomainErrorSimple("ILLEGAL_TRANSITION", stErr.Error(), http.StatusConflict)
	case errors.Is(err, entities.ErrDoctorNotAssigned):
		return pkg.NewDomainErrorSimple("CONFLICT", "Request has no assigned doctor", http.StatusConflict)
	case errors.Is(err, usecase.ErrRenderProviderFailed), errors.Is(err, usecase.ErrSignProviderFailed):
		return pkg.NewDomainErrorSimple("SIGNATURE_PROVIDER_FAILED", "Signature provider unavailable", http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
