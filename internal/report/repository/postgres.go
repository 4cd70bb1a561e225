package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	bookdomain "nalanda-library-system/backend/internal/book/domain"
	"nalanda-library-system/backend/internal/borrowing/domain"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a report repository that reads from the given db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) MostBorrowedBooks(ctx context.Context, dr DateRange, limit int) ([]BookBorrowStats, error) {
	if limit <= 0 {
		limit = 10
	}
	where := []string{"bk.is_active"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !dr.From.IsZero() {
		where = append(where, "br.borrow_date >= "+arg(dr.From))
	}
	if !dr.To.IsZero() {
		where = append(where, "br.borrow_date <= "+arg(dr.To))
	}
	query := `
		SELECT bk.id AS book_id, bk.title, bk.author, bk.isbn,
			COUNT(br.id) AS borrow_count,
			COUNT(DISTINCT br.user_id) AS unique_users
		FROM borrowings br
		JOIN books bk ON bk.id = br.book_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY bk.id, bk.title, bk.author, bk.isbn
		ORDER BY borrow_count DESC, bk.title ASC
		LIMIT ` + arg(limit)

	var out []BookBorrowStats
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) MostActiveMembers(ctx context.Context, limit int) ([]MemberActivity, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []MemberActivity
	err := r.db.SelectContext(ctx, &out, `
		SELECT u.id AS user_id, u.name, u.email,
			COUNT(br.id) AS total_borrows,
			COUNT(br.id) FILTER (WHERE br.status = 'borrowed') AS current_borrows,
			COUNT(DISTINCT br.book_id) AS unique_books,
			COALESCE(SUM(br.fine), 0) AS total_fines
		FROM borrowings br
		JOIN users u ON u.id = br.user_id
		GROUP BY u.id, u.name, u.email
		ORDER BY total_borrows DESC, u.name ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) AvailabilitySummary(ctx context.Context, now time.Time) (*AvailabilitySummary, error) {
	var s AvailabilitySummary
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS total_books,
			COALESCE(SUM(total_copies), 0) AS total_copies,
			COALESCE(SUM(available_copies), 0) AS available_copies
		FROM books WHERE is_active`)
	if err != nil {
		return nil, err
	}
	err = r.db.GetContext(ctx, &s.BorrowedNow, `
		SELECT COUNT(*) FROM borrowings WHERE status = 'borrowed'`)
	if err != nil {
		return nil, err
	}
	err = r.db.GetContext(ctx, &s.OverdueNow, `
		SELECT COUNT(*) FROM borrowings WHERE status = 'borrowed' AND due_date < $1`, now)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type overdueRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	BookID     string    `db:"book_id"`
	BorrowDate time.Time `db:"borrow_date"`
	DueDate    time.Time `db:"due_date"`
	UserName   string    `db:"user_name"`
	UserEmail  string    `db:"user_email"`
	BookTitle  string    `db:"book_title"`
	BookAuthor string    `db:"book_author"`
	BookISBN   string    `db:"book_isbn"`
}

func (r *PostgresRepository) OverdueBorrowings(ctx context.Context, now time.Time) ([]*domain.Borrowing, error) {
	var rows []overdueRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT br.id, br.user_id, br.book_id, br.borrow_date, br.due_date,
			u.name AS user_name, u.email AS user_email,
			bk.title AS book_title, bk.author AS book_author, bk.isbn AS book_isbn
		FROM borrowings br
		JOIN users u ON u.id = br.user_id
		JOIN books bk ON bk.id = br.book_id
		WHERE br.status = 'borrowed' AND br.due_date < $1
		ORDER BY br.due_date ASC`, now)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Borrowing, len(rows))
	for i, row := range rows {
		out[i] = &domain.Borrowing{
			ID:         row.ID,
			UserID:     row.UserID,
			BookID:     row.BookID,
			BorrowDate: row.BorrowDate,
			DueDate:    row.DueDate,
			Status:     domain.StatusBorrowed,
			User:       &userdomain.User{ID: row.UserID, Name: row.UserName, Email: row.UserEmail},
			Book: &bookdomain.Book{
				ID: row.BookID, Title: row.BookTitle,
				Author: row.BookAuthor, ISBN: row.BookISBN,
			},
		}
	}
	return out, nil
}
