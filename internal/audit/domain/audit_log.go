package domain

import "time"

// AuditLog represents an audit event: who did what to which resource.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
