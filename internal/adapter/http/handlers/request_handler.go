package handlers

import (
	"errors"
	"net/http"

	request "receitamed/internal/adapter/http/dto/request"
	response "receitamed/internal/adapter/http/dto/response"
	"receitamed/internal/domain/compliance"
	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase"
	"receitamed/internal/usecase/interfaces"
	"receitamed/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidRequestPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request payload", http.StatusBadRequest)

// RequestHandler handles HTTP requests for the medical request lifecycle.
type RequestHandler struct {
	usecase usecase.IRequestUseCase
}

func NewRequestHandler(uc usecase.IRequestUseCase) *RequestHandler {
	return &RequestHandler{usecase: uc}
}

func (h *RequestHandler) CreatePrescription(c *gin.Context) {
	var payload request.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	r, err := h.usecase.CreatePrescription(c.Request.Context(), usecase.CreatePrescriptionInput{
		PatientID:   payload.PatientID,
		Subtype:     payload.Subtype,
		Category:    compliance.Category(payload.Category),
		Medications: payload.Medications,
		Images:      payload.Images,
	})
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusCreated, response.FromRequest(r))
}

func (h *RequestHandler) CreateExam(c *gin.Context) {
	var payload request.CreateExamRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	r, err := h.usecase.CreateExam(c.Request.Context(), usecase.CreateExamInput{
		PatientID: payload.PatientID,
		ExamType:  payload.ExamType,
		Exams:     payload.Exams,
		Symptoms:  payload.Symptoms,
		Images:    payload.Images,
	})
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusCreated, response.FromRequest(r))
}

func (h *RequestHandler) CreateConsultation(c *gin.Context) {
	var payload request.CreateConsultationRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	r, err := h.usecase.CreateConsultation(c.Request.Context(), usecase.CreateConsultationInput{
		PatientID: payload.PatientID,
		Symptoms:  payload.Symptoms,
	})
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusCreated, response.FromRequest(r))
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	r, err := h.usecase.GetByID(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromRequest(r))
}

func (h *RequestHandler) ListRequests(c *gin.Context) {
	list, err := h.usecase.ListByPatientID(c.Request.Context(), c.Query("patient_id"))
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromRequests(list))
}

func (h *RequestHandler) AssignDoctor(c *gin.Context) {
	var payload request.AssignDoctorRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}
	r, err := h.usecase.AssignDoctor(c.Request.Context(), c.Param("request_id"), payload.DoctorID)
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) Approve(c *gin.Context) {
	var payload request.ApproveRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}
	r, err := h.usecase.Approve(c.Request.Context(), usecase.ApproveRequestInput{
		RequestID:   c.Param("request_id"),
		Notes:       payload.Notes,
		Medications: payload.Medications,
		Exams:       payload.Exams,
	})
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) Reject(c *gin.Context) {
	var payload request.RejectRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}
	r, err := h.usecase.Reject(c.Request.Context(), c.Param("request_id"), payload.Reason)
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	r, err := h.usecase.Cancel(c.Request.Context(), c.Param("request_id"))
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) Deliver(c *gin.Context) {
	r, err := h.usecase.Deliver(c.Request.Context(), c.Param("request_id"))
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) MarkConsultationReady(c *gin.Context) {
	r, err := h.usecase.MarkConsultationReady(c.Request.Context(), c.Param("request_id"))
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) StartConsultation(c *gin.Context) {
	var payload request.StartConsultationRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}
	r, err := h.usecase.StartConsultation(c.Request.Context(), c.Param("request_id"), payload.DoctorID)
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) FinishConsultation(c *gin.Context) {
	var payload request.FinishConsultationRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}
	r, err := h.usecase.FinishConsultation(c.Request.Context(), c.Param("request_id"), payload.Notes)
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) UpdatePrescriptionContent(c *gin.Context) {
	var payload request.UpdatePrescriptionContentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}
	r, err := h.usecase.UpdatePrescriptionContent(c.Request.Context(), c.Param("request_id"), payload.Medications, payload.Notes)
	h.respondMutation(c, r, err)
}

func (h *RequestHandler) UpdateExamContent(c *gin.Context) {
	var payload request.UpdateExamContentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}
	r, err := h.usecase.UpdateExamContent(c.Request.Context(), c.Param("request_id"), payload.Exams, payload.Notes)
	h.respondMutation(c, r, err)
}

// VerifyDocument is the unauthenticated access-code check for pharmacies and
// labs. It never reveals whether the request exists on a wrong code.
func (h *RequestHandler) VerifyDocument(c *gin.Context) {
	var payload request.VerifyDocumentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	v, err := h.usecase.VerifyDocument(c.Request.Context(), c.Param("request_id"), payload.AccessCode)
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromDocumentVerification(v))
}

func (h *RequestHandler) respondMutation(c *gin.Context, r *entities.Request, err error) {
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromRequest(r))
}

func mapRequestError(err error) *pkg.AppError {
	var stErr *entities.StateTransitionError
	switch {
	case errors.Is(err, usecase.ErrInvalidRequestID),
		errors.Is(err, usecase.ErrInvalidPatientID),
		errors.Is(err, usecase.ErrInvalidDoctorID),
		errors.Is(err, entities.ErrMissingRejectReason):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrRequestNotFound):
		return pkg.NewDomainErrorSimple("REQUEST_NOT_FOUND", "Request not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidAccessCode):
		return pkg.NewDomainErrorSimple("INVALID_ACCESS_CODE", "Invalid access code", http.StatusForbidden)
	case errors.Is(err, usecase.ErrDocumentNotSigned):
		return pkg.NewDomainErrorSimple("DOCUMENT_NOT_SIGNED", "Document has not been signed yet", http.StatusConflict)
	case errors.Is(err, interfaces.ErrPriceNotFound):
		return pkg.NewDomainErrorSimple("PRICE_NOT_FOUND", "No price configured for this request type", http.StatusUnprocessableEntity)
	case errors.As(err, &stErr):
		return pkg.NewDomainErrorSimple("ILLEGAL_TRANSITION", stErr.Error(), http.StatusConflict)
	case errors.Is(err, entities.ErrIllegalTransition):
		return pkg.NewDomainErrorSimple("ILLEGAL_TRANSITION", "Operation not allowed in current status", http.StatusConflict)
	case errors.Is(err, entities.ErrDoctorAlreadyAssigned),
		errors.Is(err, entities.ErrDoctorNotAssigned),
		errors.Is(err, entities.ErrDoctorMismatch),
		errors.Is(err, entities.ErrKindMismatch),
		errors.Is(err, interfaces.ErrVersionConflict):
		return pkg.NewDomainErrorSimple("CONFLICT", "Operation conflicts with the current request state", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
