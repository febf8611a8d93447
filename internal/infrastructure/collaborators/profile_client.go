package collaborators

import (
	"context"
	"errors"
	"net/http"

	"receitamed/internal/domain/compliance"
	"receitamed/internal/usecase/interfaces"
)

var ErrCertificateNotFound = errors.New("no active certificate for doctor")

// ProfileClient reads patient/doctor identification data and doctor signing
// certificates from the profile service.
type ProfileClient struct {
	apiClient
}

var (
	_ interfaces.IProfileProvider     = (*ProfileClient)(nil)
	_ interfaces.ICertificateProvider = (*ProfileClient)(nil)
)

func NewProfileClient(baseURL, apiKey string) *ProfileClient {
	return &ProfileClient{apiClient: newAPIClient(baseURL, apiKey)}
}

func (c *ProfileClient) GetPatient(ctx context.Context, patientID string) (compliance.PatientInfo, error) {
	var out struct {
		Name      string `json:"name"`
		CPF       string `json:"cpf"`
		Sex       string `json:"sex"`
		BirthDate string `json:"birth_date"`
		Address   string `json:"address"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/patients/"+patientID, nil, &out); err != nil {
		return compliance.PatientInfo{}, err
	}
	return compliance.PatientInfo{
		Name:      out.Name,
		CPF:       out.CPF,
		Sex:       out.Sex,
		BirthDate: out.BirthDate,
		Address:   out.Address,
	}, nil
}

func (c *ProfileClient) GetDoctor(ctx context.Context, doctorID string) (compliance.DoctorInfo, error) {
	var out struct {
		Name         string `json:"name"`
		Registration string `json:"registration"`
		Address      string `json:"address"`
		Phone        string `json:"phone"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/doctors/"+doctorID, nil, &out); err != nil {
		return compliance.DoctorInfo{}, err
	}
	return compliance.DoctorInfo{
		Name:         out.Name,
		Registration: out.Registration,
		Address:      out.Address,
		Phone:        out.Phone,
	}, nil
}

func (c *ProfileClient) GetActiveCertificate(ctx context.Context, doctorID string) (interfaces.Certificate, error) {
	var out struct {
		ID       string `json:"id"`
		DoctorID string `json:"doctor_id"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/v1/doctors/"+doctorID+"/certificates/active", nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return interfaces.Certificate{}, ErrCertificateNotFound
		}
		return interfaces.Certificate{}, err
	}
	return interfaces.Certificate{ID: out.ID, DoctorID: out.DoctorID}, nil
}
