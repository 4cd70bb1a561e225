package repository

import (
	"context"
	"errors"
	"time"

	"nalanda-library-system/backend/internal/borrowing/domain"
)

// ErrDuplicate is returned by Create when the user already has an active
// borrowing for the same book (partial unique index on user_id, book_id
// WHERE status = 'borrowed').
var ErrDuplicate = errors.New("active borrowing already exists for this user and book")

// ListFilter narrows and paginates borrowing listings. Zero values mean "no
// filter". Combining Status "borrowed" with DueBefore set to the current time
// selects the overdue records.
type ListFilter struct {
	UserID    string
	Status    domain.Status
	DueBefore time.Time
	Limit     int32
	Offset    int32
}

// Repository defines persistence for borrowing records.
type Repository interface {
	// FindActiveByUserAndBook returns the borrowed-status record for the
	// (user, book) pair, or nil if there is none.
	FindActiveByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Borrowing, error)
	Create(ctx context.Context, b *domain.Borrowing) error
	// FindActiveByID returns the borrowed-status record matching id and
	// owning user, or nil. Absent and already-returned records are
	// indistinguishable to the caller.
	FindActiveByID(ctx context.Context, id, userID string) (*domain.Borrowing, error)
	// Complete writes the return: status, return date, and fine. It matches
	// only a still-borrowed record, so a concurrent double return updates
	// exactly one of the two callers. Returns false when no row matched.
	Complete(ctx context.Context, b *domain.Borrowing) (bool, error)
	// List returns borrowings matching the filter, newest borrow first, with
	// user and book views populated, plus the total match count.
	List(ctx context.Context, f ListFilter) ([]*domain.Borrowing, int64, error)
}
