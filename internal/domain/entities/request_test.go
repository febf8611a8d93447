package entities

import (
	"errors"
	"testing"

	"receitamed/internal/domain/compliance"
)

func newTestPrescription() *Request {
	return NewPrescriptionRequest("patient-1", "common", compliance.CategorySimple, []string{"dipirona 500mg"}, nil)
}

func paidPrescription(t *testing.T) *Request {
	t.Helper()
	r := newTestPrescription()
	if err := r.AssignDoctor("doctor-1"); err != nil {
		t.Fatalf("assign doctor: %v", err)
	}
	if err := r.Approve(49.90, "ok", nil, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := r.MarkPendingPayment(); err != nil {
		t.Fatalf("mark pending payment: %v", err)
	}
	if err := r.MarkAsPaid(); err != nil {
		t.Fatalf("mark as paid: %v", err)
	}
	return r
}

func TestNewPrescriptionRequest(t *testing.T) {
	r := newTestPrescription()

	if r.ID == "" {
		t.Fatalf("expected generated id")
	}
	if r.Status != RequestStatusSubmitted {
		t.Fatalf("expected submitted, got %s", r.Status)
	}
	if r.Kind != RequestKindPrescription || r.Prescription == nil {
		t.Fatalf("expected prescription payload")
	}
	if len(r.AccessCode) != 4 {
		t.Fatalf("expected 4-digit access code, got %q", r.AccessCode)
	}
}

func TestNewConsultationRequestStartsSearching(t *testing.T) {
	r := NewConsultationRequest("patient-1", "dor de cabeça")
	if r.Status != RequestStatusSearchingDoctor {
		t.Fatalf("expected searching_doctor, got %s", r.Status)
	}
}

func TestAssignDoctor(t *testing.T) {
	t.Run("moves prescription into review", func(t *testing.T) {
		r := newTestPrescription()
		if err := r.AssignDoctor("doctor-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Status != RequestStatusInReview {
			t.Fatalf("expected in_review, got %s", r.Status)
		}
	})

	t.Run("keeps consultation status", func(t *testing.T) {
		r := NewConsultationRequest("patient-1", "")
		if err := r.AssignDoctor("doctor-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Status != RequestStatusSearchingDoctor {
			t.Fatalf("expected searching_doctor, got %s", r.Status)
		}
	})

	t.Run("rejects second assignment", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.AssignDoctor("doctor-1")
		if err := r.AssignDoctor("doctor-2"); !errors.Is(err, ErrDoctorAlreadyAssigned) {
			t.Fatalf("expected ErrDoctorAlreadyAssigned, got %v", err)
		}
		if r.DoctorID != "doctor-1" {
			t.Fatalf("doctor must not change, got %s", r.DoctorID)
		}
	})

	t.Run("rejects terminal states", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.Cancel()
		if err := r.AssignDoctor("doctor-1"); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
	})
}

func TestApprove(t *testing.T) {
	t.Run("requires assigned doctor", func(t *testing.T) {
		r := newTestPrescription()
		if err := r.Approve(10, "", nil, nil); !errors.Is(err, ErrDoctorNotAssigned) {
			t.Fatalf("expected ErrDoctorNotAssigned, got %v", err)
		}
	})

	t.Run("requires positive price", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.AssignDoctor("doctor-1")
		if err := r.Approve(0, "", nil, nil); !errors.Is(err, ErrInvalidRequestPrice) {
			t.Fatalf("expected ErrInvalidRequestPrice, got %v", err)
		}
	})

	t.Run("success sets price and status", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.AssignDoctor("doctor-1")
		if err := r.Approve(49.90, "tomar 8/8h", []string{"dipirona 1g"}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Status != RequestStatusApprovedPendingPayment {
			t.Fatalf("expected approved_pending_payment, got %s", r.Status)
		}
		if r.Price != 49.90 || r.DoctorNotes != "tomar 8/8h" {
			t.Fatalf("price/notes not recorded")
		}
		if r.Prescription.Medications[0] != "dipirona 1g" {
			t.Fatalf("medication revision not applied")
		}
	})

	t.Run("exam revision on prescription is kind mismatch", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.AssignDoctor("doctor-1")
		if err := r.Approve(10, "", nil, []string{"hemograma"}); !errors.Is(err, ErrKindMismatch) {
			t.Fatalf("expected ErrKindMismatch, got %v", err)
		}
	})

	t.Run("illegal after payment", func(t *testing.T) {
		r := paidPrescription(t)
		if err := r.Approve(10, "", nil, nil); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
	})
}

func TestReject(t *testing.T) {
	t.Run("requires reason", func(t *testing.T) {
		r := newTestPrescription()
		if err := r.Reject("  "); !errors.Is(err, ErrMissingRejectReason) {
			t.Fatalf("expected ErrMissingRejectReason, got %v", err)
		}
	})

	t.Run("legal before payment", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.AssignDoctor("doctor-1")
		_ = r.Approve(10, "", nil, nil)
		if err := r.Reject("ilegível"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Status != RequestStatusRejected || r.RejectionReason != "ilegível" {
			t.Fatalf("rejection not recorded")
		}
	})

	t.Run("illegal after payment", func(t *testing.T) {
		r := paidPrescription(t)
		if err := r.Reject("tarde demais"); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
	})
}

func TestMarkAsPaid(t *testing.T) {
	t.Run("legal from both pending states", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.AssignDoctor("doctor-1")
		_ = r.Approve(10, "", nil, nil)
		if err := r.MarkAsPaid(); err != nil {
			t.Fatalf("unexpected error from approved_pending_payment: %v", err)
		}
	})

	t.Run("second call reports transition error", func(t *testing.T) {
		r := paidPrescription(t)
		err := r.MarkAsPaid()
		var stErr *StateTransitionError
		if !errors.As(err, &stErr) {
			t.Fatalf("expected StateTransitionError, got %v", err)
		}
		if stErr.From != RequestStatusPaid {
			t.Fatalf("expected from=paid, got %s", stErr.From)
		}
	})
}

func TestSignAndDeliver(t *testing.T) {
	t.Run("sign requires paid", func(t *testing.T) {
		r := newTestPrescription()
		if err := r.Sign("https://docs/x.pdf", "sig-1"); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
	})

	t.Run("sign requires document url", func(t *testing.T) {
		r := paidPrescription(t)
		if err := r.Sign("", "sig-1"); !errors.Is(err, ErrMissingDocumentURL) {
			t.Fatalf("expected ErrMissingDocumentURL, got %v", err)
		}
	})

	t.Run("full happy path", func(t *testing.T) {
		r := paidPrescription(t)
		if err := r.Sign("https://docs/x.pdf", "sig-1"); err != nil {
			t.Fatalf("sign: %v", err)
		}
		if r.Status != RequestStatusSigned || r.SignedAt == nil {
			t.Fatalf("signature not recorded")
		}
		if err := r.Deliver(); err != nil {
			t.Fatalf("deliver: %v", err)
		}
		if r.Status != RequestStatusDelivered || !r.IsTerminal() {
			t.Fatalf("expected terminal delivered, got %s", r.Status)
		}
	})

	t.Run("deliver requires signed", func(t *testing.T) {
		r := paidPrescription(t)
		if err := r.Deliver(); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
	})
}

func TestCancel(t *testing.T) {
	t.Run("legal before payment", func(t *testing.T) {
		r := newTestPrescription()
		if err := r.Cancel(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Status != RequestStatusCancelled {
			t.Fatalf("expected cancelled, got %s", r.Status)
		}
	})

	t.Run("illegal after payment", func(t *testing.T) {
		r := paidPrescription(t)
		if err := r.Cancel(); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
	})
}

func TestConsultationFlow(t *testing.T) {
	r := NewConsultationRequest("patient-1", "febre")
	if err := r.AssignDoctor("doctor-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := r.Approve(80, "", nil, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := r.MarkAsPaid(); err != nil {
		t.Fatalf("pay: %v", err)
	}

	t.Run("start requires same doctor", func(t *testing.T) {
		if err := r.StartConsultation("doctor-2"); !errors.Is(err, ErrDoctorMismatch) {
			t.Fatalf("expected ErrDoctorMismatch, got %v", err)
		}
	})

	t.Run("start and finish", func(t *testing.T) {
		if err := r.StartConsultation("doctor-1"); err != nil {
			t.Fatalf("start: %v", err)
		}
		if r.Status != RequestStatusInConsultation {
			t.Fatalf("expected in_consultation, got %s", r.Status)
		}
		if err := r.FinishConsultation("repouso e hidratação"); err != nil {
			t.Fatalf("finish: %v", err)
		}
		if r.Status != RequestStatusConsultationFinished || !r.IsTerminal() {
			t.Fatalf("expected terminal consultation_finished, got %s", r.Status)
		}
	})

	t.Run("kind guard on prescription", func(t *testing.T) {
		p := newTestPrescription()
		if err := p.StartConsultation("doctor-1"); !errors.Is(err, ErrKindMismatch) {
			t.Fatalf("expected ErrKindMismatch, got %v", err)
		}
	})
}

func TestUpdateContent(t *testing.T) {
	t.Run("prescription content only while paid", func(t *testing.T) {
		r := newTestPrescription()
		if err := r.UpdatePrescriptionContent([]string{"amoxicilina"}, ""); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}

		paid := paidPrescription(t)
		if err := paid.UpdatePrescriptionContent([]string{"amoxicilina"}, "ajuste"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if paid.Prescription.Medications[0] != "amoxicilina" || paid.DoctorNotes != "ajuste" {
			t.Fatalf("content not updated")
		}
		if paid.Status != RequestStatusPaid {
			t.Fatalf("status must not change, got %s", paid.Status)
		}
	})

	t.Run("exam content on prescription is kind mismatch", func(t *testing.T) {
		r := paidPrescription(t)
		if err := r.UpdateExamContent([]string{"hemograma"}, ""); !errors.Is(err, ErrKindMismatch) {
			t.Fatalf("expected ErrKindMismatch, got %v", err)
		}
	})
}

func TestApplyAIAnalysis(t *testing.T) {
	t.Run("readable output is advisory", func(t *testing.T) {
		r := newTestPrescription()
		rejected := r.ApplyAIAnalysis(AIAnalysis{Summary: "receita comum", Risk: "low", ReadabilityOk: true})
		if rejected {
			t.Fatalf("readable analysis must not reject")
		}
		if r.Status != RequestStatusSubmitted || r.AISummary != "receita comum" {
			t.Fatalf("analysis not stored")
		}
	})

	t.Run("unreadable images auto-reject with user message", func(t *testing.T) {
		r := newTestPrescription()
		rejected := r.ApplyAIAnalysis(AIAnalysis{ReadabilityOk: false, UserMessage: "imagem ilegível, reenvie"})
		if !rejected {
			t.Fatalf("expected auto-rejection")
		}
		if r.Status != RequestStatusRejected || r.RejectionReason != "imagem ilegível, reenvie" {
			t.Fatalf("rejection not recorded, status=%s reason=%q", r.Status, r.RejectionReason)
		}
	})

	t.Run("unreadable after review started does not reject", func(t *testing.T) {
		r := newTestPrescription()
		_ = r.AssignDoctor("doctor-1")
		if rejected := r.ApplyAIAnalysis(AIAnalysis{ReadabilityOk: false}); rejected {
			t.Fatalf("must not reject once in review")
		}
		if r.Status != RequestStatusInReview {
			t.Fatalf("status must not change, got %s", r.Status)
		}
	})
}

func TestVerifyAccessCode(t *testing.T) {
	r := newTestPrescription()
	if !r.VerifyAccessCode(" " + r.AccessCode + " ") {
		t.Fatalf("expected trimmed code to match")
	}
	if r.VerifyAccessCode("nope") {
		t.Fatalf("wrong code must not match")
	}
}
