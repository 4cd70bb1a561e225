package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nalanda-library-system/backend/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	saved   []*domain.AuditLog
	saveErr error
}

func (r *memAuditRepo) Save(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, a)
	return nil
}

func (r *memAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, a := range r.saved {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.1" })
	l.LogEvent(context.Background(), "user-1", "borrow", "book:42", `{"borrowingId":"b-1"}`)

	if len(repo.saved) != 1 {
		t.Fatalf("saved %d entries, want 1", len(repo.saved))
	}
	got := repo.saved[0]
	if got.UserID != "user-1" || got.Action != "borrow" || got.Resource != "book:42" {
		t.Errorf("entry = %+v", got)
	}
	if got.IP != "10.0.0.1" {
		t.Errorf("IP = %q, want 10.0.0.1", got.IP)
	}
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be set")
	}
}

func TestLogger_AnonymousAndNoExtractor(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, nil)
	l.LogEvent(context.Background(), "", "login_failure", "auth", "")

	if len(repo.saved) != 1 {
		t.Fatalf("saved %d entries, want 1", len(repo.saved))
	}
	if repo.saved[0].UserID != AnonymousUserID {
		t.Errorf("UserID = %q, want %q", repo.saved[0].UserID, AnonymousUserID)
	}
	if repo.saved[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.saved[0].IP)
	}
}

func TestLogger_BestEffort(t *testing.T) {
	repo := &memAuditRepo{saveErr: errors.New("db down")}
	l := NewLogger(repo, nil)
	// Must not panic or propagate the error.
	l.LogEvent(context.Background(), "user-1", "return", "borrowing:b-1", "")
}

func TestLogger_NilRepo(t *testing.T) {
	l := NewLogger(nil, nil)
	l.LogEvent(context.Background(), "user-1", "borrow", "book:1", "")

	var nilLogger *Logger
	nilLogger.LogEvent(context.Background(), "user-1", "borrow", "book:1", "")
}
