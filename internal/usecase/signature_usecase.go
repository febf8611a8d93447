package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"receitamed/internal/domain/compliance"
	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var (
	ErrNoActiveCertificate  = errors.New("doctor has no active signing certificate")
	ErrRenderProviderFailed = errors.New("document renderer call failed")
	ErrSignProviderFailed   = errors.New("signing provider call failed")
)

// ISignatureUseCase runs the guarded signing workflow. Any failure leaves the
// request in paid state: signing is retryable, and compliance failures surface
// the precise missing fields instead of a generic error.
type ISignatureUseCase interface {
	SignRequest(ctx context.Context, requestID, certificatePassword string) (*entities.Request, error)
}

type SignatureUseCase struct {
	requestRepo interfaces.IRequestRepository
	certs       interfaces.ICertificateProvider
	profiles    interfaces.IProfileProvider
	renderer    interfaces.IDocumentRenderer
	signer      interfaces.ISigningService
	notifier    interfaces.INotificationSender
	log         *zap.Logger
}

var _ ISignatureUseCase = (*SignatureUseCase)(nil)

func NewSignatureUseCase(
	requestRepo interfaces.IRequestRepository,
	certs interfaces.ICertificateProvider,
	profiles interfaces.IProfileProvider,
	renderer interfaces.IDocumentRenderer,
	signer interfaces.ISigningService,
	notifier interfaces.INotificationSender,
	log *zap.Logger,
) *SignatureUseCase {
	return &SignatureUseCase{
		requestRepo: requestRepo,
		certs:       certs,
		profiles:    profiles,
		renderer:    renderer,
		signer:      signer,
		notifier:    notifier,
		log:         log,
	}
}

func (u *SignatureUseCase) SignRequest(ctx context.Context, requestID, certificatePassword string) (*entities.Request, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}
	r, err := u.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRequestNotFound
	}
	// Fail before any collaborator call when the request cannot be signed.
	if r.Status != entities.RequestStatusPaid {
		return nil, &entities.StateTransitionError{Op: "sign", From: r.Status}
	}
	if r.DoctorID == "" {
		return nil, entities.ErrDoctorNotAssigned
	}

	cert, err := u.certs.GetActiveCertificate(ctx, r.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoActiveCertificate, err)
	}

	if r.Kind == entities.RequestKindPrescription {
		if err := u.checkCompliance(ctx, r); err != nil {
			return nil, err
		}
	}

	document, err := u.renderer.Render(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderProviderFailed, err)
	}

	result, err := u.signer.Sign(ctx, cert.ID, document, certificatePassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignProviderFailed, err)
	}

	if err := r.Sign(result.DocumentURL, result.SignatureID); err != nil {
		return nil, err
	}
	if err := u.requestRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	u.log.Info("request signed",
		zap.String("request_id", r.ID), zap.String("signature_id", result.SignatureID),
		zap.String("doctor_id", r.DoctorID))

	if u.notifier != nil {
		if err := u.notifier.Notify(ctx, r.PatientID, "Documento assinado", "Seu documento foi assinado e está disponível."); err != nil {
			u.log.Warn("notification failed", zap.String("user_id", r.PatientID), zap.Error(err))
		}
	}
	return r, nil
}

// checkCompliance validates the regulatory field set for the prescription's
// category against the patient and doctor profiles.
func (u *SignatureUseCase) checkCompliance(ctx context.Context, r *entities.Request) error {
	patient, err := u.profiles.GetPatient(ctx, r.PatientID)
	if err != nil {
		return err
	}
	doctor, err := u.profiles.GetDoctor(ctx, r.DoctorID)
	if err != nil {
		return err
	}

	result := compliance.Validate(r.Prescription.Category, patient, r.Prescription.Medications, doctor)
	if !result.Valid {
		return &compliance.ComplianceError{
			Category:      r.Prescription.Category,
			MissingFields: result.MissingFields,
			Messages:      result.Messages,
		}
	}
	return nil
}
