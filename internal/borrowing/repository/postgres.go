package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	bookdomain "nalanda-library-system/backend/internal/book/domain"
	"nalanda-library-system/backend/internal/borrowing/domain"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a borrowing repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type borrowingRow struct {
	ID         string       `db:"id"`
	UserID     string       `db:"user_id"`
	BookID     string       `db:"book_id"`
	BorrowDate time.Time    `db:"borrow_date"`
	DueDate    time.Time    `db:"due_date"`
	ReturnDate sql.NullTime `db:"return_date"`
	Status     string       `db:"status"`
	Fine       int64        `db:"fine"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

// listedRow is a borrowing joined with its user and book views.
type listedRow struct {
	borrowingRow
	UserName   string `db:"user_name"`
	UserEmail  string `db:"user_email"`
	BookTitle  string `db:"book_title"`
	BookAuthor string `db:"book_author"`
	BookISBN   string `db:"book_isbn"`
	BookGenre  string `db:"book_genre"`
}

const borrowingColumns = `id, user_id, book_id, borrow_date, due_date, return_date, status, fine, created_at, updated_at`

// FindActiveByUserAndBook returns the borrowed-status record for the (user, book) pair, or nil.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FindActiveByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Borrowing, error) {
	var row borrowingRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+borrowingColumns+` FROM borrowings
		WHERE user_id = $1 AND book_id = $2 AND status = 'borrowed'`,
		userID, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToBorrowing(&row), nil
}

// Create persists the borrowing. The record must have ID set.
// Returns ErrDuplicate when the active-borrowing unique index is violated.
func (r *PostgresRepository) Create(ctx context.Context, b *domain.Borrowing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO borrowings (`+borrowingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.UserID, b.BookID, b.BorrowDate, b.DueDate,
		timeToNullTime(b.ReturnDate), string(b.Status), b.Fine, b.CreatedAt, b.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// FindActiveByID returns the borrowed-status record matching id and owning user, or nil.
func (r *PostgresRepository) FindActiveByID(ctx context.Context, id, userID string) (*domain.Borrowing, error) {
	var row borrowingRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+borrowingColumns+` FROM borrowings
		WHERE id = $1 AND user_id = $2 AND status = 'borrowed'`,
		id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToBorrowing(&row), nil
}

// Complete writes the return. The WHERE clause matches only a still-borrowed
// record, so of two concurrent returns exactly one sees a row updated.
func (r *PostgresRepository) Complete(ctx context.Context, b *domain.Borrowing) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE borrowings
		SET return_date = $3, status = $4, fine = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2 AND status = 'borrowed'`,
		b.ID, b.UserID, timeToNullTime(b.ReturnDate), string(b.Status), b.Fine, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns borrowings matching the filter, newest borrow first, with user
// and book views populated, plus the total match count.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Borrowing, int64, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.UserID != "" {
		where = append(where, "br.user_id = "+arg(f.UserID))
	}
	if f.Status != "" {
		where = append(where, "br.status = "+arg(string(f.Status)))
	}
	if !f.DueBefore.IsZero() {
		where = append(where, "br.due_date < "+arg(f.DueBefore))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM borrowings br WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT br.id, br.user_id, br.book_id, br.borrow_date, br.due_date,
			br.return_date, br.status, br.fine, br.created_at, br.updated_at,
			u.name AS user_name, u.email AS user_email,
			bk.title AS book_title, bk.author AS book_author,
			bk.isbn AS book_isbn, bk.genre AS book_genre
		FROM borrowings br
		JOIN users u ON u.id = br.user_id
		JOIN books bk ON bk.id = br.book_id
		WHERE ` + cond + `
		ORDER BY br.borrow_date DESC
		LIMIT ` + arg(limit) + ` OFFSET ` + arg(f.Offset)

	var rows []listedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Borrowing, len(rows))
	for i := range rows {
		b := rowToBorrowing(&rows[i].borrowingRow)
		b.User = &userdomain.User{ID: b.UserID, Name: rows[i].UserName, Email: rows[i].UserEmail}
		b.Book = &bookdomain.Book{
			ID:     b.BookID,
			Title:  rows[i].BookTitle,
			Author: rows[i].BookAuthor,
			ISBN:   rows[i].BookISBN,
			Genre:  rows[i].BookGenre,
		}
		out[i] = b
	}
	return out, total, nil
}

func rowToBorrowing(row *borrowingRow) *domain.Borrowing {
	b := &domain.Borrowing{
		ID:         row.ID,
		UserID:     row.UserID,
		BookID:     row.BookID,
		BorrowDate: row.BorrowDate,
		DueDate:    row.DueDate,
		Status:     domain.Status(row.Status),
		Fine:       row.Fine,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.ReturnDate.Valid {
		t := row.ReturnDate.Time
		b.ReturnDate = &t
	}
	return b
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
