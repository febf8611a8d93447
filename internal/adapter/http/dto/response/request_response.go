package response

import (
	"encoding/json"
	"time"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase"
)

type PrescriptionResponse struct {
	Subtype     string   `json:"subtype,omitempty"`
	Medications []string `json:"medications,omitempty"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category"`
}

type ExamResponse struct {
	ExamType string   `json:"exam_type,omitempty"`
	Exams    []string `json:"exams,omitempty"`
	Symptoms string   `json:"symptoms,omitempty"`
	Images   []string `json:"images,omitempty"`
}

type ConsultationResponse struct {
	Symptoms string `json:"symptoms,omitempty"`
}

type AIAnalysisResponse struct {
	Summary     string          `json:"summary,omitempty"`
	Extraction  json.RawMessage `json:"extraction,omitempty"`
	Risk        string          `json:"risk,omitempty"`
	UserMessage string          `json:"user_message,omitempty"`
}

type RequestResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id,omitempty"`
	Status    string `json:"status"`

	Prescription *PrescriptionResponse `json:"prescription,omitempty"`
	Exam         *ExamResponse         `json:"exam,omitempty"`
	Consultation *ConsultationResponse `json:"consultation,omitempty"`

	Price           float64 `json:"price,omitempty"`
	DoctorNotes     string  `json:"doctor_notes,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`

	AccessCode        string     `json:"access_code,omitempty"`
	SignedDocumentURL string     `json:"signed_document_url,omitempty"`
	SignatureID       string     `json:"signature_id,omitempty"`
	SignedAt          *time.Time `json:"signed_at,omitempty"`

	AIAnalysis *AIAnalysisResponse `json:"ai_analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromRequest(r *entities.Request) RequestResponse {
	resp := RequestResponse{
		ID:                r.ID,
		Kind:              string(r.Kind),
		PatientID:         r.PatientID,
		DoctorID:          r.DoctorID,
		Status:            string(r.Status),
		Price:             r.Price,
		DoctorNotes:       r.DoctorNotes,
		RejectionReason:   r.RejectionReason,
		AccessCode:        r.AccessCode,
		SignedDocumentURL: r.SignedDocumentURL,
		SignatureID:       r.SignatureID,
		SignedAt:          r.SignedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.Prescription != nil {
		resp.Prescription = &PrescriptionResponse{
			Subtype:     r.Prescription.Subtype,
			Medications: r.Prescription.Medications,
			Images:      r.Prescription.Images,
			Category:    string(r.Prescription.Category),
		}
	}
	if r.Exam != nil {
		resp.Exam = &ExamResponse{
			ExamType: r.Exam.ExamType,
			Exams:    r.Exam.Exams,
			Symptoms: r.Exam.Symptoms,
			Images:   r.Exam.Images,
		}
	}
	if r.Consultation != nil {
		resp.Consultation = &ConsultationResponse{Symptoms: r.Consultation.Symptoms}
	}
	if r.AISummary != "" || len(r.AIExtraction) > 0 || r.AIRisk != "" || r.AIUserMessage != "" {
		resp.AIAnalysis = &AIAnalysisResponse{
			Summary:     r.AISummary,
			Extraction:  r.AIExtraction,
			Risk:        r.AIRisk,
			UserMessage: r.AIUserMessage,
		}
	}
	return resp
}

func FromRequests(list []*entities.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, FromRequest(r))
	}
	return out
}

// DocumentVerificationResponse is the public access-code check result.
type DocumentVerificationResponse struct {
	RequestID   string `json:"request_id"`
	Status      string `json:"status"`
	DocumentURL string `json:"document_url"`
	SignatureID string `json:"signature_id,omitempty"`
}

func FromDocumentVerification(v usecase.DocumentVerification) DocumentVerificationResponse {
	return DocumentVerificationResponse{
		RequestID:   v.RequestID,
		Status:      string(v.Status),
		DocumentURL: v.DocumentURL,
		SignatureID: v.SignatureID,
	}
}
