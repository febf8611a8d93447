// Package compliance validates the regulatory field-completeness tier a
// prescription must satisfy before signing. Pure functions only: no network,
// no storage, deterministic given inputs.
package compliance

import (
	"fmt"
	"strings"
)

// Category is the regulatory tier of a prescription. Each tier adds field
// requirements on top of the previous one.
type Category string

const (
	CategorySimple            Category = "simple"
	CategoryAntimicrobial     Category = "antimicrobial"
	CategoryControlledSpecial Category = "controlled_special"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySimple, CategoryAntimicrobial, CategoryControlledSpecial:
		return true
	}
	return false
}

// PatientInfo holds the patient identification fields the regulation cares
// about. Unused fields for a given category may be empty.
type PatientInfo struct {
	Name      string
	CPF       string
	Sex       string
	BirthDate string
	Address   string
}

// DoctorInfo holds the prescriber identification fields.
type DoctorInfo struct {
	Name         string
	Registration string
	Address      string
	Phone        string
}

// Result lists what is missing, with machine-readable field codes and
// human-readable messages.
type Result struct {
	Valid         bool
	MissingFields []string
	Messages      []string
}

// ComplianceError is returned by callers (the signature workflow) when a
// Result is invalid; it carries the structured missing-field list.
type ComplianceError struct {
	Category      Category
	MissingFields []string
	Messages      []string
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("prescription does not meet %s requirements, missing: %s",
		e.Category, strings.Join(e.MissingFields, ", "))
}

// Validate checks the field set required by the category. Simple requires the
// patient name, at least one medication and full prescriber identification;
// antimicrobial adds patient sex and birth date; controlled special adds CPF
// and address instead of sex/birth date.
func Validate(category Category, patient PatientInfo, medications []string, doctor DoctorInfo) Result {
	var missing []string
	var messages []string

	add := func(code, msg string) {
		missing = append(missing, code)
		messages = append(messages, msg)
	}

	if strings.TrimSpace(patient.Name) == "" {
		add("paciente.nome", "nome do paciente é obrigatório")
	}
	if len(nonEmpty(medications)) == 0 {
		add("medicamentos", "a receita deve conter ao menos um medicamento")
	}
	if strings.TrimSpace(doctor.Name) == "" {
		add("medico.nome", "nome do médico é obrigatório")
	}
	if strings.TrimSpace(doctor.Registration) == "" {
		add("medico.crm", "registro profissional (CRM) é obrigatório")
	}
	if strings.TrimSpace(doctor.Address) == "" {
		add("medico.endereco", "endereço do médico é obrigatório")
	}
	if strings.TrimSpace(doctor.Phone) == "" {
		add("medico.telefone", "telefone do médico é obrigatório")
	}

	switch category {
	case CategoryAntimicrobial:
		if strings.TrimSpace(patient.Sex) == "" {
			add("paciente.sexo", "sexo do paciente é obrigatório para antimicrobianos")
		}
		if strings.TrimSpace(patient.BirthDate) == "" {
			add("paciente.data_nascimento", "data de nascimento é obrigatória para antimicrobianos")
		}
	case CategoryControlledSpecial:
		if strings.TrimSpace(patient.CPF) == "" {
			add("paciente.cpf", "CPF do paciente é obrigatório para receita de controle especial")
		}
		if strings.TrimSpace(patient.Address) == "" {
			add("paciente.endereco", "endereço do paciente é obrigatório para receita de controle especial")
		}
	}

	return Result{
		Valid:         len(missing) == 0,
		MissingFields: missing,
		Messages:      messages,
	}
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
