package request

// CreatePrescriptionRequest is the patient-facing payload for a new
// prescription request. Price never appears here; pricing is resolved from the
// catalog at approval time.
type CreatePrescriptionRequest struct {
	PatientID   string   `json:"patient_id" binding:"required"`
	Subtype     string   `json:"subtype"`
	Category    string   `json:"category"`
	Medications []string `json:"medications"`
	Images      []string `json:"images"`
}

type CreateExamRequest struct {
	PatientID string   `json:"patient_id" binding:"required"`
	ExamType  string   `json:"exam_type"`
	Exams     []string `json:"exams"`
	Symptoms  string   `json:"symptoms"`
	Images    []string `json:"images"`
}

type CreateConsultationRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Symptoms  string `json:"symptoms"`
}

type AssignDoctorRequest struct {
	DoctorID string `json:"doctor_id" binding:"required"`
}

// ApproveRequest optionally revises the structured content alongside approval.
type ApproveRequest struct {
	Notes       string   `json:"notes"`
	Medications []string `json:"medications"`
	Exams       []string `json:"exams"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type StartConsultationRequest struct {
	DoctorID string `json:"doctor_id" binding:"required"`
}

type FinishConsultationRequest struct {
	Notes string `json:"notes"`
}

type UpdatePrescriptionContentRequest struct {
	Medications []string `json:"medications"`
	Notes       string   `json:"notes"`
}

type UpdateExamContentRequest struct {
	Exams []string `json:"exams"`
	Notes string   `json:"notes"`
}

// VerifyDocumentRequest is the unauthenticated access-code check payload.
type VerifyDocumentRequest struct {
	AccessCode string `json:"access_code" binding:"required"`
}
