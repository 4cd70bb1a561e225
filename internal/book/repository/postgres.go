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

	"nalanda-library-system/backend/internal/book/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a book repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type bookRow struct {
	ID              string       `db:"id"`
	Title           string       `db:"title"`
	Author          string       `db:"author"`
	ISBN            string       `db:"isbn"`
	Genre           string       `db:"genre"`
	Description     string       `db:"description"`
	PublicationDate sql.NullTime `db:"publication_date"`
	TotalCopies     int32        `db:"total_copies"`
	AvailableCopies int32        `db:"available_copies"`
	IsActive        bool         `db:"is_active"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

const bookColumns = `id, title, author, isbn, genre, description, publication_date,
	total_copies, available_copies, is_active, created_at, updated_at`

// GetActiveByID returns the active book for id, or nil if absent or soft-deleted.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveByID(ctx context.Context, id string) (*domain.Book, error) {
	var row bookRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+bookColumns+` FROM books WHERE id = $1 AND is_active`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToBook(&row), nil
}

// Create persists the book. The book must have ID set. Returns ErrDuplicate on an ISBN collision.
func (r *PostgresRepository) Create(ctx context.Context, b *domain.Book) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.Title, b.Author, b.ISBN, b.Genre, b.Description, timeToNullTime(b.PublicationDate),
		b.TotalCopies, b.AvailableCopies, b.IsActive, b.CreatedAt, b.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Update applies the non-nil catalog fields and returns the updated book, or
// nil if no active book matches id. A total_copies change moves
// available_copies by the same delta, so the number of copies on loan
// (total - available) is preserved; callers can never set available_copies
// directly. Shrinking total_copies below the copies currently on loan would
// drive available_copies negative, which the table CHECK rejects, surfacing
// as ErrCopiesConflict.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd *domain.Update) (*domain.Book, error) {
	var row bookRow
	err := r.db.GetContext(ctx, &row, `
		UPDATE books SET
			title = COALESCE($2, title),
			author = COALESCE($3, author),
			isbn = COALESCE($4, isbn),
			genre = COALESCE($5, genre),
			description = COALESCE($6, description),
			publication_date = COALESCE($7, publication_date),
			total_copies = COALESCE($8, total_copies),
			available_copies = available_copies + COALESCE($8, total_copies) - total_copies,
			updated_at = $9
		WHERE id = $1 AND is_active
		RETURNING `+bookColumns,
		id, upd.Title, upd.Author, upd.ISBN, upd.Genre, upd.Description,
		timeToNullTime(upd.PublicationDate), upd.TotalCopies, time.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if isCheckViolation(err) {
			return nil, ErrCopiesConflict
		}
		return nil, err
	}
	return rowToBook(&row), nil
}

// Deactivate soft-deletes the book. Returns false if no active book matched
// and ErrActiveLoans while any copy is on loan: a returned copy must always
// find its active book, so deactivation waits until every copy is back.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books SET is_active = FALSE, updated_at = $2
		WHERE id = $1 AND is_active AND available_copies = total_copies`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	var onLoan bool
	err = r.db.GetContext(ctx, &onLoan,
		`SELECT available_copies < total_copies FROM books WHERE id = $1 AND is_active`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if onLoan {
		return false, ErrActiveLoans
	}
	return false, nil
}

// List returns active books matching the filter, newest first, plus the total match count.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Book, int64, error) {
	where := []string{"is_active"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Genre != "" {
		where = append(where, "genre = "+arg(f.Genre))
	}
	if f.Author != "" {
		where = append(where, "author ILIKE "+arg("%"+f.Author+"%"))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, "(title ILIKE "+p+" OR author ILIKE "+p+")")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM books WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + bookColumns + ` FROM books WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(f.Offset)

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Book, len(rows))
	for i := range rows {
		out[i] = rowToBook(&rows[i])
	}
	return out, total, nil
}

// AdjustAvailable atomically applies delta to available_copies when the result
// stays within [0, total_copies]. Returns nil when the precondition failed or
// the book is absent or inactive.
func (r *PostgresRepository) AdjustAvailable(ctx context.Context, id string, delta int32) (*domain.Book, error) {
	var row bookRow
	err := r.db.GetContext(ctx, &row, `
		UPDATE books SET available_copies = available_copies + $2, updated_at = $3
		WHERE id = $1 AND is_active
			AND available_copies + $2 >= 0
			AND available_copies + $2 <= total_copies
		RETURNING `+bookColumns,
		id, delta, time.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToBook(&row), nil
}

func rowToBook(row *bookRow) *domain.Book {
	b := &domain.Book{
		ID:              row.ID,
		Title:           row.Title,
		Author:          row.Author,
		ISBN:            row.ISBN,
		Genre:           row.Genre,
		Description:     row.Description,
		TotalCopies:     row.TotalCopies,
		AvailableCopies: row.AvailableCopies,
		IsActive:        row.IsActive,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.PublicationDate.Valid {
		t := row.PublicationDate.Time
		b.PublicationDate = &t
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

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
