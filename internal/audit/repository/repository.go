package repository

import (
	"context"

	"nalanda-library-system/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Save(ctx context.Context, a *domain.AuditLog) error
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error)
}
