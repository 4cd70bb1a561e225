package handlers

import (
	"time"

	bookdomain "nalanda-library-system/backend/internal/book/domain"
	borrowdomain "nalanda-library-system/backend/internal/borrowing/domain"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

// userView is the public shape of a user. The password hash never leaves the server.
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func toUserView(u *userdomain.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type bookView struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	Genre           string     `json:"genre"`
	Description     string     `json:"description,omitempty"`
	PublicationDate *time.Time `json:"publicationDate,omitempty"`
	TotalCopies     int32      `json:"totalCopies"`
	AvailableCopies int32      `json:"availableCopies"`
	CreatedAt       time.Time  `json:"createdAt,omitzero"`
	UpdatedAt       time.Time  `json:"updatedAt,omitzero"`
}

func toBookView(b *bookdomain.Book) *bookView {
	if b == nil {
		return nil
	}
	return &bookView{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		Description:     b.Description,
		PublicationDate: b.PublicationDate,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// borrowingView projects the derived status: a borrowed record past its due
// date reads as overdue even though the row still says borrowed.
type borrowingView struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	BookID     string     `json:"bookId"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     string     `json:"status"`
	Fine       int64      `json:"fine"`
	User       *userView  `json:"user,omitempty"`
	Book       *bookView  `json:"book,omitempty"`
}

func toBorrowingView(b *borrowdomain.Borrowing, now time.Time) *borrowingView {
	if b == nil {
		return nil
	}
	return &borrowingView{
		ID:         b.ID,
		UserID:     b.UserID,
		BookID:     b.BookID,
		BorrowDate: b.BorrowDate,
		DueDate:    b.DueDate,
		ReturnDate: b.ReturnDate,
		Status:     string(b.EffectiveStatus(now)),
		Fine:       b.Fine,
		User:       toUserView(b.User),
		Book:       toBookView(b.Book),
	}
}

// pagination is the shared list metadata block.
type pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
