package repository

import (
	"context"
	"errors"

	"nalanda-library-system/backend/internal/book/domain"
)

var (
	// ErrDuplicate is returned by Create and Update when the ISBN is already taken.
	ErrDuplicate = errors.New("book with this isbn already exists")
	// ErrCopiesConflict is returned by Update when total copies would drop
	// below the number of copies currently on loan.
	ErrCopiesConflict = errors.New("total copies cannot be less than copies currently borrowed")
	// ErrActiveLoans is returned by Deactivate while copies are still on loan.
	ErrActiveLoans = errors.New("book has copies on loan and cannot be removed")
)

// ListFilter narrows and paginates catalog listings. Zero values mean "no filter".
type ListFilter struct {
	Genre  string
	Author string
	Search string
	Limit  int32
	Offset int32
}

// Repository defines persistence for the book catalog and inventory counts.
type Repository interface {
	// GetActiveByID returns the active book for id, or nil if absent or soft-deleted.
	GetActiveByID(ctx context.Context, id string) (*domain.Book, error)
	Create(ctx context.Context, b *domain.Book) error
	// Update applies the non-nil catalog fields. Callers cannot set
	// available_copies directly: a total_copies change moves available_copies
	// by the same delta, keeping the copies on loan constant. Returns nil if
	// no active book matches id, and ErrCopiesConflict if total_copies would
	// drop below the copies on loan.
	Update(ctx context.Context, id string, upd *domain.Update) (*domain.Book, error)
	// Deactivate soft-deletes the book. Returns false if no active book
	// matched and ErrActiveLoans while any copy is on loan.
	Deactivate(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f ListFilter) ([]*domain.Book, int64, error)
	// AdjustAvailable atomically applies delta to available_copies, but only
	// when the result stays within [0, total_copies]. Returns the updated book,
	// or nil when the precondition failed or the book is absent. The check and
	// the write are a single statement, so concurrent adjustments can never
	// drive the count out of range.
	AdjustAvailable(ctx context.Context, id string, delta int32) (*domain.Book, error)
}
