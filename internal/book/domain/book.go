package domain

import (
	"errors"
	"regexp"
	"time"
)

var isbnPattern = regexp.MustCompile(`^(\d{10}|\d{13})$`)

// Book is a catalog entry plus its inventory counts. AvailableCopies is
// written only by the borrowing service; catalog updates never touch it.
type Book struct {
	ID              string
	Title           string
	Author          string
	ISBN            string
	Genre           string
	Description     string
	PublicationDate *time.Time
	TotalCopies     int32
	AvailableCopies int32
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Update carries the catalog fields a book update may change. Nil fields are
// left untouched. AvailableCopies is deliberately absent: the inventory count
// cannot be set through a catalog update.
type Update struct {
	Title           *string
	Author          *string
	ISBN            *string
	Genre           *string
	Description     *string
	PublicationDate *time.Time
	TotalCopies     *int32
}

// Validate validates the book for persistence. Returns an error describing the first validation failure.
func (b *Book) Validate() error {
	if b.Title == "" {
		return errors.New("title is required")
	}
	if b.Author == "" {
		return errors.New("author is required")
	}
	if !isbnPattern.MatchString(b.ISBN) {
		return errors.New("isbn must be 10 or 13 digits")
	}
	if b.Genre == "" {
		return errors.New("genre is required")
	}
	if b.TotalCopies < 0 {
		return errors.New("total copies cannot be negative")
	}
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return errors.New("available copies must be between 0 and total copies")
	}
	return nil
}

// Validate checks the updatable fields that carry format constraints.
func (u *Update) Validate() error {
	if u.Title != nil && *u.Title == "" {
		return errors.New("title cannot be empty")
	}
	if u.Author != nil && *u.Author == "" {
		return errors.New("author cannot be empty")
	}
	if u.ISBN != nil && !isbnPattern.MatchString(*u.ISBN) {
		return errors.New("isbn must be 10 or 13 digits")
	}
	if u.Genre != nil && *u.Genre == "" {
		return errors.New("genre cannot be empty")
	}
	if u.TotalCopies != nil && *u.TotalCopies < 0 {
		return errors.New("total copies cannot be negative")
	}
	return nil
}
