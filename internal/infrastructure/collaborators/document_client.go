package collaborators

import (
	"context"
	"encoding/base64"
	"net/http"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"
)

// DocumentClient renders printable documents through the rendering service
// and submits them to the digital-signature provider bridge.
type DocumentClient struct {
	apiClient
}

var (
	_ interfaces.IDocumentRenderer = (*DocumentClient)(nil)
	_ interfaces.ISigningService   = (*DocumentClient)(nil)
)

func NewDocumentClient(baseURL, apiKey string) *DocumentClient {
	return &DocumentClient{apiClient: newAPIClient(baseURL, apiKey)}
}

func (c *DocumentClient) Render(ctx context.Context, r *entities.Request) ([]byte, error) {
	in := map[string]any{
		"request_id": r.ID,
		"kind":       string(r.Kind),
		"patient_id": r.PatientID,
		"doctor_id":  r.DoctorID,
	}
	switch r.Kind {
	case entities.RequestKindPrescription:
		in["prescription"] = r.Prescription
	case entities.RequestKindExam:
		in["exam"] = r.Exam
	case entities.RequestKindConsultation:
		in["consultation"] = r.Consultation
	}
	var out struct {
		Document string `json:"document"` // base64 PDF
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/documents/render", in, &out); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(out.Document)
}

func (c *DocumentClient) Sign(ctx context.Context, certificateID string, document []byte, password string) (interfaces.SignatureResult, error) {
	in := map[string]any{
		"certificate_id": certificateID,
		"document":       base64.StdEncoding.EncodeToString(document),
		"password":       password,
	}
	var out struct {
		DocumentURL string `json:"document_url"`
		SignatureID string `json:"signature_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/documents/sign", in, &out); err != nil {
		return interfaces.SignatureResult{}, err
	}
	return interfaces.SignatureResult{DocumentURL: out.DocumentURL, SignatureID: out.SignatureID}, nil
}
