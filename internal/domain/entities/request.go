package entities

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"receitamed/internal/domain/compliance"

	"github.com/google/uuid"
)

// RequestStatus is the single source of truth for which operations are legal
// on a Request. Every transition method checks it and fails fast, so concurrent
// callers racing the same transition have at most one winner.

type RequestStatus string

const (
	RequestStatusSubmitted              RequestStatus = "submitted"
	RequestStatusSearchingDoctor        RequestStatus = "searching_doctor"
	RequestStatusInReview               RequestStatus = "in_review"
	RequestStatusApprovedPendingPayment RequestStatus = "approved_pending_payment"
	RequestStatusPendingPayment         RequestStatus = "pending_payment"
	RequestStatusPaid                   RequestStatus = "paid"
	RequestStatusSigned                 RequestStatus = "signed"
	RequestStatusDelivered              RequestStatus = "delivered"
	RequestStatusRejected               RequestStatus = "rejected"
	RequestStatusCancelled              RequestStatus = "cancelled"
	RequestStatusConsultationReady      RequestStatus = "consultation_ready"
	RequestStatusInConsultation         RequestStatus = "in_consultation"
	RequestStatusConsultationFinished   RequestStatus = "consultation_finished"
)

type RequestKind string

const (
	RequestKindPrescription RequestKind = "prescription"
	RequestKindExam         RequestKind = "exam"
	RequestKindConsultation RequestKind = "consultation"
)

var (
	// ErrIllegalTransition is the root of every state-guard failure. Callers in
	// reconciliation contexts must treat it as "already applied", direct user
	// actions surface it as a conflict.
	ErrIllegalTransition = errors.New("illegal state transition")

	ErrDoctorNotAssigned     = errors.New("no doctor assigned to request")
	ErrDoctorAlreadyAssigned = errors.New("request already has an assigned doctor")
	ErrDoctorMismatch        = errors.New("request is assigned to another doctor")
	ErrInvalidRequestPrice   = errors.New("request price must be positive")
	ErrMissingRejectReason   = errors.New("rejection reason is required")
	ErrMissingDocumentURL    = errors.New("signed document reference is required")
	ErrKindMismatch          = errors.New("operation does not apply to this request kind")
)

// StateTransitionError reports which operation was attempted from which status.
// It unwraps to ErrIllegalTransition.
type StateTransitionError struct {
	Op   string
	From RequestStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s not allowed from status %s", e.Op, e.From)
}

func (e *StateTransitionError) Unwrap() error { return ErrIllegalTransition }

// PrescriptionData is the kind-specific payload for prescription requests.
type PrescriptionData struct {
	Subtype     string              `json:"subtype"`
	Medications []string            `json:"medications"`
	Images      []string            `json:"images,omitempty"`
	Category    compliance.Category `json:"category"`
}

// ExamData is the kind-specific payload for exam order requests.
type ExamData struct {
	ExamType string   `json:"exam_type"`
	Exams    []string `json:"exams"`
	Symptoms string   `json:"symptoms,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// ConsultationData is the kind-specific payload for teleconsultation requests.
type ConsultationData struct {
	Symptoms string `json:"symptoms"`
}

// AIAnalysis carries the advisory output of the reading collaborator. Only
// ReadabilityOk gates anything (the automatic rejection); the rest is stored
// for doctors and support staff.
type AIAnalysis struct {
	Summary       string          `json:"summary,omitempty"`
	Extraction    json.RawMessage `json:"extraction,omitempty"`
	Risk          string          `json:"risk,omitempty"`
	ReadabilityOk bool            `json:"readability_ok"`
	UserMessage   string          `json:"user_message,omitempty"`
}

// Request is the aggregate root for one medical service request. Exactly one
// of Prescription/Exam/Consultation is non-nil, matching Kind.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (patient_id-index): patient_id
//
// Version backs the conditional update every repository write performs, so the
// "check current state, then transition" pattern is race-free at storage level.
type Request struct {
	ID        string        `json:"id"`
	Kind      RequestKind   `json:"kind"`
	PatientID string        `json:"patient_id"`
	DoctorID  string        `json:"doctor_id,omitempty"`
	Status    RequestStatus `json:"status"`

	Prescription *PrescriptionData `json:"prescription,omitempty"`
	Exam         *ExamData         `json:"exam,omitempty"`
	Consultation *ConsultationData `json:"consultation,omitempty"`

	Price           float64 `json:"price,omitempty"`
	DoctorNotes     string  `json:"doctor_notes,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`

	AccessCode        string     `json:"access_code"`
	SignedDocumentURL string     `json:"signed_document_url,omitempty"`
	SignatureID       string     `json:"signature_id,omitempty"`
	SignedAt          *time.Time `json:"signed_at,omitempty"`

	AISummary     string          `json:"ai_summary,omitempty"`
	AIExtraction  json.RawMessage `json:"ai_extraction,omitempty"`
	AIRisk        string          `json:"ai_risk,omitempty"`
	AIUserMessage string          `json:"ai_user_message,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPrescriptionRequest(patientID, subtype string, category compliance.Category, medications, images []string) *Request {
	r := newRequest(patientID, RequestKindPrescription, RequestStatusSubmitted)
	r.Prescription = &PrescriptionData{
		Subtype:     subtype,
		Medications: medications,
		Images:      images,
		Category:    category,
	}
	return r
}

func NewExamRequest(patientID, examType, symptoms string, exams, images []string) *Request {
	r := newRequest(patientID, RequestKindExam, RequestStatusSubmitted)
	r.Exam = &ExamData{
		ExamType: examType,
		Exams:    exams,
		Symptoms: symptoms,
		Images:   images,
	}
	return r
}

func NewConsultationRequest(patientID, symptoms string) *Request {
	r := newRequest(patientID, RequestKindConsultation, RequestStatusSearchingDoctor)
	r.Consultation = &ConsultationData{Symptoms: symptoms}
	return r
}

func newRequest(patientID string, kind RequestKind, initial RequestStatus) *Request {
	now := time.Now().UTC()
	return &Request{
		ID:         uuid.NewString(),
		Kind:       kind,
		PatientID:  patientID,
		Status:     initial,
		AccessCode: newAccessCode(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// newAccessCode returns a random 4-digit code used for unauthenticated
// document verification.
func newAccessCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand failing means the platform RNG is broken; there is no
		// reasonable recovery for entity creation.
		panic(err)
	}
	return fmt.Sprintf("%04d", n.Int64())
}

// IsTerminal reports whether no further transitions are possible.
func (r *Request) IsTerminal() bool {
	switch r.Status {
	case RequestStatusRejected, RequestStatusCancelled, RequestStatusDelivered, RequestStatusConsultationFinished:
		return true
	}
	return false
}

// AssignDoctor sets the reviewing doctor. Prescription and exam requests move
// into review; consultations keep their status (the doctor accepted the call,
// readiness is a separate explicit step).
func (r *Request) AssignDoctor(doctorID string) error {
	if r.IsTerminal() {
		return &StateTransitionError{Op: "assign_doctor", From: r.Status}
	}
	if r.DoctorID != "" {
		return ErrDoctorAlreadyAssigned
	}
	r.DoctorID = doctorID
	if r.Kind != RequestKindConsultation &&
		(r.Status == RequestStatusSubmitted || r.Status == RequestStatusSearchingDoctor) {
		r.Status = RequestStatusInReview
	}
	r.touch()
	return nil
}

// Approve attaches the price and moves the request to approved-pending-payment.
// The price comes from the catalog lookup, never from the client; it is set
// exactly once per approval cycle.
func (r *Request) Approve(price float64, notes string, medications, exams []string) error {
	switch r.Status {
	case RequestStatusSubmitted, RequestStatusSearchingDoctor, RequestStatusInReview:
	default:
		return &StateTransitionError{Op: "approve", From: r.Status}
	}
	if r.DoctorID == "" {
		return ErrDoctorNotAssigned
	}
	if price <= 0 {
		return ErrInvalidRequestPrice
	}
	if len(medications) > 0 {
		if r.Prescription == nil {
			return ErrKindMismatch
		}
		r.Prescription.Medications = medications
	}
	if len(exams) > 0 {
		if r.Exam == nil {
			return ErrKindMismatch
		}
		r.Exam.Exams = exams
	}
	r.Price = price
	r.DoctorNotes = notes
	r.Status = RequestStatusApprovedPendingPayment
	r.touch()
	return nil
}

// Reject is legal from any non-terminal state before payment confirmation.
// The price, if already attached, is retained for history.
func (r *Request) Reject(reason string) error {
	switch r.Status {
	case RequestStatusSubmitted, RequestStatusSearchingDoctor, RequestStatusInReview,
		RequestStatusApprovedPendingPayment, RequestStatusPendingPayment, RequestStatusConsultationReady:
	default:
		return &StateTransitionError{Op: "reject", From: r.Status}
	}
	if strings.TrimSpace(reason) == "" {
		return ErrMissingRejectReason
	}
	r.RejectionReason = reason
	r.Status = RequestStatusRejected
	r.touch()
	return nil
}

// MarkPendingPayment records that a payment was created for this approval.
func (r *Request) MarkPendingPayment() error {
	if r.Status != RequestStatusApprovedPendingPayment {
		return &StateTransitionError{Op: "mark_pending_payment", From: r.Status}
	}
	r.Status = RequestStatusPendingPayment
	r.touch()
	return nil
}

// MarkAsPaid is the sole entry point by which reconciliation advances
// money-gated state. A second call fails with a transition error the caller
// must treat as already-applied.
func (r *Request) MarkAsPaid() error {
	switch r.Status {
	case RequestStatusApprovedPendingPayment, RequestStatusPendingPayment:
	default:
		return &StateTransitionError{Op: "mark_as_paid", From: r.Status}
	}
	r.Status = RequestStatusPaid
	r.touch()
	return nil
}

// Sign stamps the signed document reference onto a paid request.
func (r *Request) Sign(documentURL, signatureID string) error {
	if r.Status != RequestStatusPaid {
		return &StateTransitionError{Op: "sign", From: r.Status}
	}
	if strings.TrimSpace(documentURL) == "" {
		return ErrMissingDocumentURL
	}
	now := time.Now().UTC()
	r.SignedDocumentURL = documentURL
	r.SignatureID = signatureID
	r.SignedAt = &now
	r.Status = RequestStatusSigned
	r.touch()
	return nil
}

// Deliver closes the lifecycle of a signed document request.
func (r *Request) Deliver() error {
	if r.Status != RequestStatusSigned {
		return &StateTransitionError{Op: "deliver", From: r.Status}
	}
	r.Status = RequestStatusDelivered
	r.touch()
	return nil
}

// Cancel is legal strictly before payment is confirmed.
func (r *Request) Cancel() error {
	switch r.Status {
	case RequestStatusSubmitted, RequestStatusInReview, RequestStatusApprovedPendingPayment,
		RequestStatusPendingPayment, RequestStatusSearchingDoctor, RequestStatusConsultationReady:
	default:
		return &StateTransitionError{Op: "cancel", From: r.Status}
	}
	r.Status = RequestStatusCancelled
	r.touch()
	return nil
}

func (r *Request) MarkConsultationReady() error {
	if r.Kind != RequestKindConsultation {
		return ErrKindMismatch
	}
	if r.IsTerminal() {
		return &StateTransitionError{Op: "mark_consultation_ready", From: r.Status}
	}
	r.Status = RequestStatusConsultationReady
	r.touch()
	return nil
}

func (r *Request) StartConsultation(doctorID string) error {
	if r.Kind != RequestKindConsultation {
		return ErrKindMismatch
	}
	if r.Status != RequestStatusPaid {
		return &StateTransitionError{Op: "start_consultation", From: r.Status}
	}
	if r.DoctorID == "" || r.DoctorID != doctorID {
		return ErrDoctorMismatch
	}
	r.Status = RequestStatusInConsultation
	r.touch()
	return nil
}

func (r *Request) FinishConsultation(notes string) error {
	if r.Kind != RequestKindConsultation {
		return ErrKindMismatch
	}
	if r.Status != RequestStatusInConsultation {
		return &StateTransitionError{Op: "finish_consultation", From: r.Status}
	}
	if notes != "" {
		r.DoctorNotes = notes
	}
	r.Status = RequestStatusConsultationFinished
	r.touch()
	return nil
}

// UpdatePrescriptionContent lets the doctor revise medications and notes
// between payment and signature without changing status.
func (r *Request) UpdatePrescriptionContent(medications []string, notes string) error {
	if r.Kind != RequestKindPrescription || r.Prescription == nil {
		return ErrKindMismatch
	}
	if r.Status != RequestStatusPaid {
		return &StateTransitionError{Op: "update_prescription_content", From: r.Status}
	}
	if len(medications) > 0 {
		r.Prescription.Medications = medications
	}
	if notes != "" {
		r.DoctorNotes = notes
	}
	r.touch()
	return nil
}

// UpdateExamContent is the exam counterpart of UpdatePrescriptionContent.
func (r *Request) UpdateExamContent(exams []string, notes string) error {
	if r.Kind != RequestKindExam || r.Exam == nil {
		return ErrKindMismatch
	}
	if r.Status != RequestStatusPaid {
		return &StateTransitionError{Op: "update_exam_content", From: r.Status}
	}
	if len(exams) > 0 {
		r.Exam.Exams = exams
	}
	if notes != "" {
		r.DoctorNotes = notes
	}
	r.touch()
	return nil
}

// ApplyAIAnalysis stores the advisory output and, when the source images are
// not readable, rejects the request outright with the analyzer's user-facing
// message, bypassing doctor review. Returns whether that automatic rejection
// happened.
func (r *Request) ApplyAIAnalysis(a AIAnalysis) bool {
	r.AISummary = a.Summary
	r.AIExtraction = a.Extraction
	r.AIRisk = a.Risk
	r.AIUserMessage = a.UserMessage
	r.touch()

	if a.ReadabilityOk {
		return false
	}
	switch r.Status {
	case RequestStatusSubmitted, RequestStatusSearchingDoctor:
		msg := a.UserMessage
		if msg == "" {
			msg = "submitted images could not be read"
		}
		r.RejectionReason = msg
		r.Status = RequestStatusRejected
		r.touch()
		return true
	}
	return false
}

// VerifyAccessCode checks the unauthenticated verification code.
func (r *Request) VerifyAccessCode(code string) bool {
	return r.AccessCode != "" && r.AccessCode == strings.TrimSpace(code)
}

func (r *Request) touch() {
	r.UpdatedAt = time.Now().UTC()
}
