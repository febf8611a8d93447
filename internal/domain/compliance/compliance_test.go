package compliance

import (
	"slices"
	"testing"
)

var (
	fullPatient = PatientInfo{
		Name:      "Maria Silva",
		CPF:       "123.456.789-00",
		Sex:       "F",
		BirthDate: "1990-05-01",
		Address:   "Rua A, 100",
	}
	fullDoctor = DoctorInfo{
		Name:         "Dr. João",
		Registration: "CRM-SP 12345",
		Address:      "Av. B, 200",
		Phone:        "+55 11 99999-0000",
	}
)

func TestValidateSimple(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		res := Validate(CategorySimple, fullPatient, []string{"dipirona"}, fullDoctor)
		if !res.Valid || len(res.MissingFields) != 0 {
			t.Fatalf("expected valid, missing=%v", res.MissingFields)
		}
	})

	t.Run("missing base fields", func(t *testing.T) {
		res := Validate(CategorySimple, PatientInfo{}, []string{"  "}, DoctorInfo{Name: "Dr. João"})
		if res.Valid {
			t.Fatalf("expected invalid")
		}
		for _, code := range []string{"paciente.nome", "medicamentos", "medico.crm", "medico.endereco", "medico.telefone"} {
			if !slices.Contains(res.MissingFields, code) {
				t.Fatalf("expected %s in %v", code, res.MissingFields)
			}
		}
		if len(res.Messages) != len(res.MissingFields) {
			t.Fatalf("one message per missing field, got %d/%d", len(res.Messages), len(res.MissingFields))
		}
	})
}

func TestValidateAntimicrobial(t *testing.T) {
	patient := fullPatient
	patient.Sex = ""
	patient.BirthDate = ""

	res := Validate(CategoryAntimicrobial, patient, []string{"amoxicilina"}, fullDoctor)
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	if !slices.Contains(res.MissingFields, "paciente.sexo") || !slices.Contains(res.MissingFields, "paciente.data_nascimento") {
		t.Fatalf("expected sexo and data_nascimento, got %v", res.MissingFields)
	}
	// CPF is not required at this tier.
	patient.CPF = ""
	patient.Sex = "F"
	patient.BirthDate = "1990-05-01"
	if res := Validate(CategoryAntimicrobial, patient, []string{"amoxicilina"}, fullDoctor); !res.Valid {
		t.Fatalf("expected valid without cpf, missing=%v", res.MissingFields)
	}
}

func TestValidateControlledSpecial(t *testing.T) {
	patient := fullPatient
	patient.CPF = ""
	patient.Address = ""

	res := Validate(CategoryControlledSpecial, patient, []string{"clonazepam"}, fullDoctor)
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	if !slices.Contains(res.MissingFields, "paciente.cpf") || !slices.Contains(res.MissingFields, "paciente.endereco") {
		t.Fatalf("expected cpf and endereco, got %v", res.MissingFields)
	}
}

func TestComplianceErrorMessage(t *testing.T) {
	err := &ComplianceError{
		Category:      CategoryControlledSpecial,
		MissingFields: []string{"paciente.cpf", "paciente.endereco"},
	}
	want := "prescription does not meet controlled_special requirements, missing: paciente.cpf, paciente.endereco"
	if err.Error() != want {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestCategoryValid(t *testing.T) {
	if !CategorySimple.Valid() || !CategoryAntimicrobial.Valid() || !CategoryControlledSpecial.Valid() {
		t.Fatalf("known categories must be valid")
	}
	if Category("controlled").Valid() {
		t.Fatalf("unknown category must be invalid")
	}
}
