package dto

import (
	"time"

	"pubudu-echanneling/internal/domain/entity"

	"github.com/google/uuid"
)

type AuditLogFilterRequest struct {
	UserID *uuid.UUID
	Action string
	Page   int
	Limit  int
}

// Response DTOs

type AuditLogActor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

type AuditLogResponse struct {
	ID        int64          `json:"id"`
	User      *AuditLogActor `json:"user,omitempty"`
	Action    string         `json:"action"`
	Metadata  entity.JSON    `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}
