package repository

import (
	"context"
	"time"

	"nalanda-library-system/backend/internal/borrowing/domain"
)

// BookBorrowStats is one row of the most-borrowed report.
type BookBorrowStats struct {
	BookID      string `db:"book_id" json:"bookId"`
	Title       string `db:"title" json:"title"`
	Author      string `db:"author" json:"author"`
	ISBN        string `db:"isbn" json:"isbn"`
	BorrowCount int64  `db:"borrow_count" json:"borrowCount"`
	UniqueUsers int64  `db:"unique_users" json:"uniqueUsers"`
}

// MemberActivity is one row of the most-active-members report.
type MemberActivity struct {
	UserID         string `db:"user_id" json:"userId"`
	Name           string `db:"name" json:"name"`
	Email          string `db:"email" json:"email"`
	TotalBorrows   int64  `db:"total_borrows" json:"totalBorrows"`
	CurrentBorrows int64  `db:"current_borrows" json:"currentBorrows"`
	UniqueBooks    int64  `db:"unique_books" json:"uniqueBooks"`
	TotalFines     int64  `db:"total_fines" json:"totalFines"`
}

// AvailabilitySummary aggregates the active catalog's inventory state.
type AvailabilitySummary struct {
	TotalBooks      int64 `db:"total_books" json:"totalBooks"`
	TotalCopies     int64 `db:"total_copies" json:"totalCopies"`
	AvailableCopies int64 `db:"available_copies" json:"availableCopies"`
	BorrowedNow     int64 `db:"borrowed_now" json:"borrowedNow"`
	OverdueNow      int64 `db:"overdue_now" json:"overdueNow"`
}

// DateRange bounds a report to borrows inside [From, To]. Zero values mean unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Repository defines the read-only aggregation queries behind the admin reports.
type Repository interface {
	MostBorrowedBooks(ctx context.Context, r DateRange, limit int) ([]BookBorrowStats, error)
	MostActiveMembers(ctx context.Context, limit int) ([]MemberActivity, error)
	AvailabilitySummary(ctx context.Context, now time.Time) (*AvailabilitySummary, error)
	// OverdueBorrowings returns still-borrowed records whose due date is before
	// now, with user and book views populated, most overdue first.
	OverdueBorrowings(ctx context.Context, now time.Time) ([]*domain.Borrowing, error)
}
