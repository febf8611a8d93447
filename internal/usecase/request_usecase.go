package usecase

import (
	"context"
	"errors"
	"strings"

	"receitamed/internal/domain/compliance"
	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var (
	ErrRequestNotFound   = errors.New("request not found")
	ErrInvalidRequestID  = errors.New("invalid request id")
	ErrInvalidPatientID  = errors.New("invalid patient id")
	ErrInvalidDoctorID   = errors.New("invalid doctor id")
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrDocumentNotSigned = errors.New("request has no signed document yet")
)

// CreatePrescriptionInput carries patient-supplied prescription data. Price is
// never part of it; pricing comes from the catalog at approval time.
type CreatePrescriptionInput struct {
	PatientID   string
	Subtype     string
	Category    compliance.Category
	Medications []string
	Images      []string
}

type CreateExamInput struct {
	PatientID string
	ExamType  string
	Exams     []string
	Symptoms  string
	Images    []string
}

type CreateConsultationInput struct {
	PatientID string
	Symptoms  string
}

type ApproveRequestInput struct {
	RequestID   string
	Notes       string
	Medications []string
	Exams       []string
}

// DocumentVerification is the unauthenticated access-code check result.
type DocumentVerification struct {
	RequestID   string
	Status      entities.RequestStatus
	DocumentURL string
	SignatureID string
}

// IRequestUseCase exposes the request lifecycle operations consumed by the
// transport layer.
type IRequestUseCase interface {
	CreatePrescription(ctx context.Context, input CreatePrescriptionInput) (*entities.Request, error)
	CreateExam(ctx context.Context, input CreateExamInput) (*entities.Request, error)
	CreateConsultation(ctx context.Context, input CreateConsultationInput) (*entities.Request, error)
	GetByID(ctx context.Context, id string) (*entities.Request, error)
	ListByPatientID(ctx context.Context, patientID string) ([]*entities.Request, error)
	AssignDoctor(ctx context.Context, requestID, doctorID string) (*entities.Request, error)
	Approve(ctx context.Context, input ApproveRequestInput) (*entities.Request, error)
	Reject(ctx context.Context, requestID, reason string) (*entities.Request, error)
	Cancel(ctx context.Context, requestID string) (*entities.Request, error)
	Deliver(ctx context.Context, requestID string) (*entities.Request, error)
	MarkConsultationReady(ctx context.Context, requestID string) (*entities.Request, error)
	StartConsultation(ctx context.Context, requestID, doctorID string) (*entities.Request, error)
	FinishConsultation(ctx context.Context, requestID, notes string) (*entities.Request, error)
	UpdatePrescriptionContent(ctx context.Context, requestID string, medications []string, notes string) (*entities.Request, error)
	UpdateExamContent(ctx context.Context, requestID string, exams []string, notes string) (*entities.Request, error)
	VerifyDocument(ctx context.Context, requestID, accessCode string) (DocumentVerification, error)
}

type RequestUseCase struct {
	repo     interfaces.IRequestRepository
	prices   interfaces.IPriceLookup
	aiReader interfaces.IAIReader
	notifier interfaces.INotificationSender
	log      *zap.Logger
}

var _ IRequestUseCase = (*RequestUseCase)(nil)

func NewRequestUseCase(
	repo interfaces.IRequestRepository,
	prices interfaces.IPriceLookup,
	aiReader interfaces.IAIReader,
	notifier interfaces.INotificationSender,
	log *zap.Logger,
) *RequestUseCase {
	return &RequestUseCase{repo: repo, prices: prices, aiReader: aiReader, notifier: notifier, log: log}
}

func (u *RequestUseCase) CreatePrescription(ctx context.Context, input CreatePrescriptionInput) (*entities.Request, error) {
	patientID := strings.TrimSpace(input.PatientID)
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}
	category := input.Category
	if category == "" {
		category = compliance.CategorySimple
	}
	if !category.Valid() {
		return nil, errors.New("invalid prescription category")
	}

	r := entities.NewPrescriptionRequest(patientID, strings.TrimSpace(input.Subtype), category, input.Medications, input.Images)
	if err := u.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	u.log.Info("request created",
		zap.String("request_id", r.ID), zap.String("kind", string(r.Kind)), zap.String("patient_id", patientID))

	u.runReadingPass(ctx, r, input.Images, "")
	return r, nil
}

func (u *RequestUseCase) CreateExam(ctx context.Context, input CreateExamInput) (*entities.Request, error) {
	patientID := strings.TrimSpace(input.PatientID)
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}

	r := entities.NewExamRequest(patientID, strings.TrimSpace(input.ExamType), input.Symptoms, input.Exams, input.Images)
	if err := u.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	u.log.Info("request created",
		zap.String("request_id", r.ID), zap.String("kind", string(r.Kind)), zap.String("patient_id", patientID))

	u.runReadingPass(ctx, r, input.Images, input.Symptoms)
	return r, nil
}

func (u *RequestUseCase) CreateConsultation(ctx context.Context, input CreateConsultationInput) (*entities.Request, error) {
	patientID := strings.TrimSpace(input.PatientID)
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}

	r := entities.NewConsultationRequest(patientID, input.Symptoms)
	if err := u.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	u.log.Info("request created",
		zap.String("request_id", r.ID), zap.String("kind", string(r.Kind)), zap.String("patient_id", patientID))
	return r, nil
}

// runReadingPass sends the submitted images through the AI reader. The output
// is advisory except for unreadable images, which reject the request outright
// with the analyzer's user-facing message. A reader failure never blocks
// creation.
func (u *RequestUseCase) runReadingPass(ctx context.Context, r *entities.Request, images []string, text string) {
	if u.aiReader == nil || len(images) == 0 {
		return
	}
	analysis, err := u.aiReader.Analyze(ctx, images, text)
	if err != nil {
		u.log.Warn("ai reading pass failed", zap.String("request_id", r.ID), zap.Error(err))
		return
	}
	autoRejected := r.ApplyAIAnalysis(analysis)
	if err := u.repo.Update(ctx, r); err != nil {
		u.log.Warn("failed persisting ai analysis", zap.String("request_id", r.ID), zap.Error(err))
		return
	}
	if autoRejected {
		u.log.Info("request auto-rejected by reading pass", zap.String("request_id", r.ID))
		u.notify(ctx, r.PatientID, "Solicitação recusada", r.RejectionReason)
	}
}

func (u *RequestUseCase) GetByID(ctx context.Context, id string) (*entities.Request, error) {
	return u.load(ctx, id)
}

func (u *RequestUseCase) ListByPatientID(ctx context.Context, patientID string) ([]*entities.Request, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}
	return u.repo.ListByPatientID(ctx, patientID)
}

func (u *RequestUseCase) AssignDoctor(ctx context.Context, requestID, doctorID string) (*entities.Request, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, ErrInvalidDoctorID
	}
	return u.mutate(ctx, requestID, func(r *entities.Request) error {
		return r.AssignDoctor(doctorID)
	})
}

func (u *RequestUseCase) Approve(ctx context.Context, input ApproveRequestInput) (*entities.Request, error) {
	r, err := u.load(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	price, err := u.prices.GetPrice(ctx, string(r.Kind), requestSubtype(r))
	if err != nil {
		return nil, err
	}

	if err := r.Approve(price, input.Notes, input.Medications, input.Exams); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	u.log.Info("request approved",
		zap.String("request_id", r.ID), zap.Float64("price", price), zap.String("doctor_id", r.DoctorID))
	u.notify(ctx, r.PatientID, "Solicitação aprovada", "Sua solicitação foi aprovada e aguarda pagamento.")
	return r, nil
}

func (u *RequestUseCase) Reject(ctx context.Context, requestID, reason string) (*entities.Request, error) {
	r, err := u.mutate(ctx, requestID, func(r *entities.Request) error {
		return r.Reject(reason)
	})
	if err != nil {
		return nil, err
	}
	u.notify(ctx, r.PatientID, "Solicitação recusada", reason)
	return r, nil
}

func (u *RequestUseCase) Cancel(ctx context.Context, requestID string) (*entities.Request, error) {
	return u.mutate(ctx, requestID, (*entities.Request).Cancel)
}

func (u *RequestUseCase) Deliver(ctx context.Context, requestID string) (*entities.Request, error) {
	return u.mutate(ctx, requestID, (*entities.Request).Deliver)
}

func (u *RequestUseCase) MarkConsultationReady(ctx context.Context, requestID string) (*entities.Request, error) {
	r, err := u.mutate(ctx, requestID, (*entities.Request).MarkConsultationReady)
	if err != nil {
		return nil, err
	}
	u.notify(ctx, r.PatientID, "Consulta pronta", "Sua consulta está pronta para começar.")
	return r, nil
}

func (u *RequestUseCase) StartConsultation(ctx context.Context, requestID, doctorID string) (*entities.Request, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, ErrInvalidDoctorID
	}
	return u.mutate(ctx, requestID, func(r *entities.Request) error {
		return r.StartConsultation(doctorID)
	})
}

func (u *RequestUseCase) FinishConsultation(ctx context.Context, requestID, notes string) (*entities.Request, error) {
	return u.mutate(ctx, requestID, func(r *entities.Request) error {
		return r.FinishConsultation(notes)
	})
}

func (u *RequestUseCase) UpdatePrescriptionContent(ctx context.Context, requestID string, medications []string, notes string) (*entities.Request, error) {
	return u.mutate(ctx, requestID, func(r *entities.Request) error {
		return r.UpdatePrescriptionContent(medications, notes)
	})
}

func (u *RequestUseCase) UpdateExamContent(ctx context.Context, requestID string, exams []string, notes string) (*entities.Request, error) {
	return u.mutate(ctx, requestID, func(r *entities.Request) error {
		return r.UpdateExamContent(exams, notes)
	})
}

func (u *RequestUseCase) VerifyDocument(ctx context.Context, requestID, accessCode string) (DocumentVerification, error) {
	r, err := u.load(ctx, requestID)
	if err != nil {
		return DocumentVerification{}, err
	}
	if !r.VerifyAccessCode(accessCode) {
		return DocumentVerification{}, ErrInvalidAccessCode
	}
	if r.SignedDocumentURL == "" {
		return DocumentVerification{}, ErrDocumentNotSigned
	}
	return DocumentVerification{
		RequestID:   r.ID,
		Status:      r.Status,
		DocumentURL: r.SignedDocumentURL,
		SignatureID: r.SignatureID,
	}, nil
}

func (u *RequestUseCase) load(ctx context.Context, id string) (*entities.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidRequestID
	}
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRequestNotFound
	}
	return r, nil
}

func (u *RequestUseCase) mutate(ctx context.Context, id string, fn func(*entities.Request) error) (*entities.Request, error) {
	r, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (u *RequestUseCase) notify(ctx context.Context, userID, title, message string) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.Notify(ctx, userID, title, message); err != nil {
		u.log.Warn("notification failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func requestSubtype(r *entities.Request) string {
	switch r.Kind {
	case entities.RequestKindPrescription:
		if r.Prescription != nil {
			return r.Prescription.Subtype
		}
	case entities.RequestKindExam:
		if r.Exam != nil {
			return r.Exam.ExamType
		}
	}
	return ""
}
