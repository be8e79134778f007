package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Profiles are included when they are loaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	role := user.Role.RoleName
	if role == "" {
		role = entity.RoleNameByID(user.RoleID)
	}

	response := &dto.UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.EmailValue(),
		ContactNumber: user.ContactNumber,
		FullName:      user.FullName(),
		RoleID:        user.RoleID,
		Role:          role,
		IsActive:      user.IsActive,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}

	if user.PatientProfile != nil {
		response.PatientProfile = PatientProfileToResponse(user.PatientProfile)
	}

	if user.DoctorProfile != nil {
		response.DoctorProfile = &dto.DoctorProfileResponse{
			FullName:        user.DoctorProfile.FullName,
			Specialization:  user.DoctorProfile.Specialization,
			LicenseNo:       user.DoctorProfile.LicenseNo,
			ConsultationFee: user.DoctorProfile.ConsultationFee,
		}
	}

	if user.ReceptionistProfile != nil {
		response.ReceptionistProfile = &dto.ReceptionistProfileResponse{
			FullName: user.ReceptionistProfile.FullName,
			NIC:      user.ReceptionistProfile.NIC,
		}
	}

	return response
}
