package interfaces

import (
	"context"

	"receitamed/internal/domain/compliance"
	"receitamed/internal/domain/entities"
)

// IPriceLookup resolves the charge for a product/subtype pair from the
// catalog service. Returns ErrPriceNotFound for unknown pairs.
type IPriceLookup interface {
	GetPrice(ctx context.Context, productType, subtype string) (float64, error)
}

// IDocumentRenderer produces the printable document for a request.
type IDocumentRenderer interface {
	Render(ctx context.Context, r *entities.Request) ([]byte, error)
}

// SignatureResult is the outcome of a successful signing call.
type SignatureResult struct {
	DocumentURL string
	SignatureID string
}

// ISigningService invokes the external digital-signature provider.
type ISigningService interface {
	Sign(ctx context.Context, certificateID string, document []byte, password string) (SignatureResult, error)
}

// Certificate identifies a doctor's active signing certificate.
type Certificate struct {
	ID       string
	DoctorID string
}

// ICertificateProvider resolves the active certificate for a doctor.
type ICertificateProvider interface {
	GetActiveCertificate(ctx context.Context, doctorID string) (Certificate, error)
}

// IAIReader analyzes submitted source images/text. Its output is advisory;
// only the readability flag gates anything.
type IAIReader interface {
	Analyze(ctx context.Context, images []string, text string) (entities.AIAnalysis, error)
}

// INotificationSender delivers a user notification. Fire-and-forget from the
// core's perspective: failures are logged, never block a transition.
type INotificationSender interface {
	Notify(ctx context.Context, userID, title, message string) error
}

// IProfileProvider resolves patient and doctor identification fields from the
// profile service, as consumed by the compliance validator and the renderer.
type IProfileProvider interface {
	GetPatient(ctx context.Context, patientID string) (compliance.PatientInfo, error)
	GetDoctor(ctx context.Context, doctorID string) (compliance.DoctorInfo, error)
}
