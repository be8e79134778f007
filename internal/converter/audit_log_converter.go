package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	response := &dto.AuditLogResponse{
		ID:        log.ID,
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}

	// system actions and deleted users have no actor
	if log.User != nil {
		response.User = &dto.AuditLogActor{
			ID:       log.User.ID,
			Username: log.User.Username,
			Role:     log.User.Role.RoleName,
		}
	}

	return response
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
