package domain

import (
	"time"

	bookdomain "nalanda-library-system/backend/internal/book/domain"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

type Status string

const (
	// StatusBorrowed and StatusReturned are the only statuses ever written.
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	// StatusOverdue is a query-time projection of a borrowed record past its
	// due date. It is never stored; see EffectiveStatus.
	StatusOverdue Status = "overdue"
)

// Borrowing links a user to a book for a bounded period. A record is created
// as borrowed and mutated exactly once, on return; it is never deleted.
type Borrowing struct {
	ID         string
	UserID     string
	BookID     string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     Status
	Fine       int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// User and Book are populated views attached by services and listing
	// queries; they are not part of the stored record.
	User *userdomain.User
	Book *bookdomain.Book
}

// EffectiveStatus returns the status as seen at the given time: a borrowed
// record past its due date reads as overdue without any stored transition.
func (b *Borrowing) EffectiveStatus(now time.Time) Status {
	if b.Status == StatusBorrowed && b.DueDate.Before(now) {
		return StatusOverdue
	}
	return b.Status
}

// DaysLate returns the number of chargeable late days for a return at "at"
// against dueDate. Partial days round up: one millisecond past the due date
// already counts as a full day. Zero when on time.
func DaysLate(dueDate, at time.Time) int64 {
	late := at.Sub(dueDate)
	if late <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	return int64((late + day - time.Nanosecond) / day)
}

// FineAmount computes the fine for a return at returnDate against dueDate.
// On-time returns incur no fine.
func FineAmount(dueDate, returnDate time.Time, finePerDay int64) int64 {
	return DaysLate(dueDate, returnDate) * finePerDay
}
