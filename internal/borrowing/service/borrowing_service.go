package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nalanda-library-system/backend/internal/audit"
	bookdomain "nalanda-library-system/backend/internal/book/domain"
	"nalanda-library-system/backend/internal/borrowing/domain"
	borrowrepo "nalanda-library-system/backend/internal/borrowing/repository"
	"nalanda-library-system/backend/internal/config"
	otelx "nalanda-library-system/backend/internal/telemetry/otel"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

// Sentinel errors for the borrowing service; handlers map them to HTTP statuses.
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book is not available for borrowing")
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")
	// ErrBorrowingNotFound covers both "no such borrowing" and "already
	// returned"; callers cannot distinguish the two.
	ErrBorrowingNotFound = errors.New("borrowing record not found or already returned")
)

// BookRepo is the minimal book repository needed by the borrowing service.
type BookRepo interface {
	GetActiveByID(ctx context.Context, id string) (*bookdomain.Book, error)
	AdjustAvailable(ctx context.Context, id string, delta int32) (*bookdomain.Book, error)
}

// BorrowingRepo is the minimal borrowing repository needed by the borrowing service.
type BorrowingRepo interface {
	FindActiveByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Borrowing, error)
	Create(ctx context.Context, b *domain.Borrowing) error
	FindActiveByID(ctx context.Context, id, userID string) (*domain.Borrowing, error)
	Complete(ctx context.Context, b *domain.Borrowing) (bool, error)
}

// UserRepo is the minimal user repository needed by the borrowing service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// BorrowingService orchestrates borrow and return across the borrowing
// records and the book inventory counts. It is the only writer of
// available_copies and of a borrowing's status, return date, and fine.
type BorrowingService struct {
	borrowings BorrowingRepo
	books      BookRepo
	users      UserRepo
	policy     config.Policy
	audit      audit.AuditLogger
	metrics    *otelx.LendingMetrics
}

// NewBorrowingService returns a BorrowingService with the given dependencies.
// auditLogger and metrics may be nil.
func NewBorrowingService(
	borrowings BorrowingRepo,
	books BookRepo,
	users UserRepo,
	policy config.Policy,
	auditLogger audit.AuditLogger,
	metrics *otelx.LendingMetrics,
) *BorrowingService {
	return &BorrowingService{
		borrowings: borrowings,
		books:      books,
		users:      users,
		policy:     policy,
		audit:      auditLogger,
		metrics:    metrics,
	}
}

// Borrow lends one copy of the book to the user. A copy is claimed through the
// inventory's atomic conditional decrement before the borrowing record is
// created, so two concurrent borrows of the last copy cannot both succeed; if
// creating the record fails, the claimed copy is released again. The
// per-(user, book) active-borrowing unique index closes the remaining race
// between the duplicate check and the insert.
func (s *BorrowingService) Borrow(ctx context.Context, userID, bookID string) (*domain.Borrowing, error) {
	book, err := s.books.GetActiveByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	if book.AvailableCopies <= 0 {
		return nil, ErrBookUnavailable
	}
	existing, err := s.borrowings.FindActiveByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyBorrowed
	}

	claimed, err := s.books.AdjustAvailable(ctx, bookID, -1)
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		return nil, ErrBookUnavailable
	}

	now := time.Now().UTC()
	b := &domain.Borrowing{
		ID:         uuid.New().String(),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, s.policy.BorrowDurationDays),
		Status:     domain.StatusBorrowed,
		Fine:       0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.borrowings.Create(ctx, b); err != nil {
		// Release the claimed copy; the insert failed so no record owns it.
		if _, releaseErr := s.books.AdjustAvailable(ctx, bookID, +1); releaseErr != nil {
			return nil, fmt.Errorf("create borrowing: %w (release copy: %v)", err, releaseErr)
		}
		if errors.Is(err, borrowrepo.ErrDuplicate) {
			return nil, ErrAlreadyBorrowed
		}
		return nil, err
	}

	b.Book = claimed
	if u, err := s.users.GetByID(ctx, userID); err == nil {
		b.User = u
	}

	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, "borrow", "book:"+bookID, `{"borrowingId":"`+b.ID+`"}`)
	}
	s.metrics.RecordBorrow(ctx)
	return b, nil
}

// Return completes the borrowing owned by userID: sets the return date and
// status, assesses any fine, and restores the copy to the inventory. The
// completing update matches only a still-borrowed record, so a second return
// of the same borrowing reports ErrBorrowingNotFound.
func (s *BorrowingService) Return(ctx context.Context, borrowingID, userID string) (*domain.Borrowing, error) {
	b, err := s.borrowings.FindActiveByID(ctx, borrowingID, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBorrowingNotFound
	}

	now := time.Now().UTC()
	b.ReturnDate = &now
	b.Status = domain.StatusReturned
	b.Fine = domain.FineAmount(b.DueDate, now, s.policy.FinePerDay)

	done, err := s.borrowings.Complete(ctx, b)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, ErrBorrowingNotFound
	}

	book, err := s.books.AdjustAvailable(ctx, b.BookID, +1)
	if err != nil {
		return nil, err
	}
	if book == nil {
		// Every borrowed record corresponds to one claimed copy, so the
		// increment precondition can only fail if the ledgers diverged.
		return nil, fmt.Errorf("inventory inconsistency restoring copy of book %s", b.BookID)
	}

	b.Book = book
	if u, err := s.users.GetByID(ctx, userID); err == nil {
		b.User = u
	}

	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, "return", "borrowing:"+borrowingID, fmt.Sprintf(`{"fine":%d}`, b.Fine))
	}
	s.metrics.RecordReturn(ctx, b.Fine)
	return b, nil
}
