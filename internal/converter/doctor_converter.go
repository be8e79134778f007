package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

// DoctorProfileToResponse converts a DoctorProfile with its User to the admin view.
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		UserID:          profile.UserID,
		Username:        profile.User.Username,
		Email:           profile.User.EmailValue(),
		ContactNumber:   profile.User.ContactNumber,
		FullName:        profile.FullName,
		Specialization:  profile.Specialization,
		LicenseNo:       profile.LicenseNo,
		ConsultationFee: profile.ConsultationFee,
		IsActive:        profile.User.IsActive,
		CreatedAt:       profile.User.CreatedAt,
	}
}

func DoctorProfilesToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorProfileToResponse(&profiles[i])
	}
	return responses
}

func DoctorProfilesToPublic(profiles []entity.DoctorProfile) []dto.PublicDoctorResponse {
	responses := make([]dto.PublicDoctorResponse, len(profiles))
	for i, p := range profiles {
		responses[i] = dto.PublicDoctorResponse{
			ID:              p.UserID,
			FullName:        p.FullName,
			Specialization:  p.Specialization,
			ConsultationFee: p.ConsultationFee,
		}
	}
	return responses
}
