package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}

	response := &dto.PatientProfileResponse{
		UserID:   profile.UserID,
		FullName: profile.FullName,
		NIC:      profile.NIC,
		Address:  profile.Address,
	}
	if profile.Gender != nil {
		response.Gender = *profile.Gender
	}
	if profile.DateOfBirth != nil {
		response.DateOfBirth = profile.DateOfBirth.Format(dateLayout)
	}
	return response
}

// PatientToResponse includes the account details; User must be preloaded.
func PatientToResponse(profile *entity.PatientProfile) dto.PatientResponse {
	return dto.PatientResponse{
		PatientProfileResponse: *PatientProfileToResponse(profile),
		Username:               profile.User.Username,
		Email:                  profile.User.EmailValue(),
		ContactNumber:          profile.User.ContactNumber,
	}
}

func PatientsToResponses(profiles []entity.PatientProfile) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(profiles))
	for i := range profiles {
		responses[i] = PatientToResponse(&profiles[i])
	}
	return responses
}
