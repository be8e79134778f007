package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

func ReceptionistProfileToResponse(profile *entity.ReceptionistProfile) *dto.ReceptionistResponse {
	if profile == nil {
		return nil
	}

	return &dto.ReceptionistResponse{
		UserID:        profile.UserID,
		Username:      profile.User.Username,
		Email:         profile.User.EmailValue(),
		ContactNumber: profile.User.ContactNumber,
		FullName:      profile.FullName,
		NIC:           profile.NIC,
		IsActive:      profile.User.IsActive,
		CreatedAt:     profile.User.CreatedAt,
	}
}

func ReceptionistProfilesToResponses(profiles []entity.ReceptionistProfile) []dto.ReceptionistResponse {
	responses := make([]dto.ReceptionistResponse, len(profiles))
	for i := range profiles {
		responses[i] = *ReceptionistProfileToResponse(&profiles[i])
	}
	return responses
}
