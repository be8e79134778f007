package converter

import (
	"strings"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Forms arrive as loose JSON; numbers typed into text inputs (contact
// numbers, fees) are coerced here after the rule engine accepted them.

func FormToRegisterPatientRequest(f validator.Form) *dto.RegisterPatientRequest {
	return &dto.RegisterPatientRequest{
		Username:      f.String(validator.FieldUsername),
		Password:      cast.ToString(f[validator.FieldPassword]),
		Email:         strings.ToLower(f.String(validator.FieldEmail)),
		ContactNumber: f.String(validator.FieldContactNumber),
		FullName:      validator.Sanitize(f.String(validator.FieldFullName)),
		NIC:           strings.ToUpper(f.String(validator.FieldNIC)),
		Gender:        strings.ToUpper(f.String(validator.FieldGender)),
		DateOfBirth:   f.String(validator.FieldDateOfBirth),
		Address:       validator.Sanitize(f.String(validator.FieldAddress)),
	}
}

func FormToLoginRequest(f validator.Form) *dto.LoginRequest {
	return &dto.LoginRequest{
		Username: f.String(validator.FieldUsername),
		Password: cast.ToString(f[validator.FieldPassword]),
	}
}

func FormToCreateDoctorRequest(f validator.Form) (*dto.CreateDoctorRequest, error) {
	fee, err := formDecimal(f, "consultation_fee")
	if err != nil {
		return nil, err
	}
	return &dto.CreateDoctorRequest{
		Username:        f.String(validator.FieldUsername),
		Password:        cast.ToString(f[validator.FieldPassword]),
		Email:           strings.ToLower(f.String(validator.FieldEmail)),
		ContactNumber:   f.String(validator.FieldContactNumber),
		FullName:        validator.Sanitize(f.String(validator.FieldFullName)),
		Specialization:  validator.Sanitize(f.String(validator.FieldSpecialization)),
		LicenseNo:       strings.ToUpper(f.String(validator.FieldLicenseNo)),
		ConsultationFee: fee,
	}, nil
}

func FormToCreateReceptionistRequest(f validator.Form) *dto.CreateReceptionistRequest {
	return &dto.CreateReceptionistRequest{
		Username:      f.String(validator.FieldUsername),
		Password:      cast.ToString(f[validator.FieldPassword]),
		Email:         strings.ToLower(f.String(validator.FieldEmail)),
		ContactNumber: f.String(validator.FieldContactNumber),
		FullName:      validator.Sanitize(f.String(validator.FieldFullName)),
		NIC:           strings.ToUpper(f.String(validator.FieldNIC)),
	}
}

// formDecimal reads an optional money field given as a number or a string.
func formDecimal(f validator.Form, field string) (decimal.Decimal, error) {
	raw := f.String(field)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
