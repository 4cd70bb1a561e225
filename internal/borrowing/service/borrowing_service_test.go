package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookdomain "nalanda-library-system/backend/internal/book/domain"
	"nalanda-library-system/backend/internal/borrowing/domain"
	borrowrepo "nalanda-library-system/backend/internal/borrowing/repository"
	"nalanda-library-system/backend/internal/config"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

type memBookRepo struct {
	mu    sync.Mutex
	books map[string]*bookdomain.Book
}

func (r *memBookRepo) GetActiveByID(ctx context.Context, id string) (*bookdomain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok || !b.IsActive {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// AdjustAvailable mirrors the conditional UPDATE: the check and the write
// happen under one lock, like a single statement.
func (r *memBookRepo) AdjustAvailable(ctx context.Context, id string, delta int32) (*bookdomain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok || !b.IsActive {
		return nil, nil
	}
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return nil, nil
	}
	b.AvailableCopies = next
	cp := *b
	return &cp, nil
}

type memBorrowingRepo struct {
	mu        sync.Mutex
	records   map[string]*domain.Borrowing
	createErr error
}

func (r *memBorrowingRepo) FindActiveByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Borrowing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.records {
		if b.UserID == userID && b.BookID == bookID && b.Status == domain.StatusBorrowed {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBorrowingRepo) Create(ctx context.Context, b *domain.Borrowing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.records {
		if existing.UserID == b.UserID && existing.BookID == b.BookID && existing.Status == domain.StatusBorrowed {
			return borrowrepo.ErrDuplicate
		}
	}
	cp := *b
	r.records[b.ID] = &cp
	return nil
}

func (r *memBorrowingRepo) FindActiveByID(ctx context.Context, id, userID string) (*domain.Borrowing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.records[id]
	if !ok || b.UserID != userID || b.Status != domain.StatusBorrowed {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBorrowingRepo) Complete(ctx context.Context, b *domain.Borrowing) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[b.ID]
	if !ok || stored.UserID != b.UserID || stored.Status != domain.StatusBorrowed {
		return false, nil
	}
	stored.Status = b.Status
	stored.ReturnDate = b.ReturnDate
	stored.Fine = b.Fine
	return true, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*userdomain.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func testPolicy() config.Policy {
	return config.Policy{BorrowDurationDays: 14, FinePerDay: 5, TokenTTL: 168 * time.Hour}
}

func newTestService(books *memBookRepo, borrowings *memBorrowingRepo) *BorrowingService {
	users := &memUserRepo{users: map[string]*userdomain.User{
		"user-1": {ID: "user-1", Name: "Reader One", Email: "one@example.com", Role: userdomain.RoleMember, IsActive: true},
		"user-2": {ID: "user-2", Name: "Reader Two", Email: "two@example.com", Role: userdomain.RoleMember, IsActive: true},
	}}
	return NewBorrowingService(borrowings, books, users, testPolicy(), nil, nil)
}

func oneBookRepo(available, total int32) *memBookRepo {
	return &memBookRepo{books: map[string]*bookdomain.Book{
		"book-1": {
			ID: "book-1", Title: "Gödel, Escher, Bach", Author: "Hofstadter",
			ISBN: "9780465026562", Genre: "Science",
			TotalCopies: total, AvailableCopies: available, IsActive: true,
		},
	}}
}

func TestBorrow_Success(t *testing.T) {
	books := oneBookRepo(2, 2)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	before := time.Now().UTC()
	b, err := s.Borrow(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if b.Status != domain.StatusBorrowed {
		t.Errorf("status = %q, want borrowed", b.Status)
	}
	if b.Fine != 0 {
		t.Errorf("fine = %d, want 0", b.Fine)
	}
	wantDue := b.BorrowDate.AddDate(0, 0, 14)
	if !b.DueDate.Equal(wantDue) {
		t.Errorf("dueDate = %v, want borrowDate + 14d (%v)", b.DueDate, wantDue)
	}
	if b.BorrowDate.Before(before) {
		t.Errorf("borrowDate %v before test start %v", b.BorrowDate, before)
	}
	if b.Book == nil || b.Book.AvailableCopies != 1 {
		t.Errorf("book view = %+v, want availableCopies 1", b.Book)
	}
	if b.User == nil || b.User.ID != "user-1" {
		t.Errorf("user view = %+v, want user-1", b.User)
	}
}

func TestBorrow_BookNotFound(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	if _, err := s.Borrow(context.Background(), "user-1", "missing"); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("got %v, want ErrBookNotFound", err)
	}
}

func TestBorrow_InactiveBookNotFound(t *testing.T) {
	books := oneBookRepo(1, 1)
	books.books["book-1"].IsActive = false
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	if _, err := s.Borrow(context.Background(), "user-1", "book-1"); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("got %v, want ErrBookNotFound", err)
	}
}

func TestBorrow_Unavailable(t *testing.T) {
	books := oneBookRepo(0, 3)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	if _, err := s.Borrow(context.Background(), "user-1", "book-1"); !errors.Is(err, ErrBookUnavailable) {
		t.Errorf("got %v, want ErrBookUnavailable", err)
	}
}

func TestBorrow_Duplicate(t *testing.T) {
	books := oneBookRepo(2, 2)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	if _, err := s.Borrow(context.Background(), "user-1", "book-1"); err != nil {
		t.Fatalf("first Borrow: %v", err)
	}
	if _, err := s.Borrow(context.Background(), "user-1", "book-1"); !errors.Is(err, ErrAlreadyBorrowed) {
		t.Errorf("second Borrow: got %v, want ErrAlreadyBorrowed", err)
	}
	if got := books.books["book-1"].AvailableCopies; got != 1 {
		t.Errorf("availableCopies = %d, want 1 (duplicate must not consume a copy)", got)
	}
	// Another user may still borrow the same title.
	if _, err := s.Borrow(context.Background(), "user-2", "book-1"); err != nil {
		t.Errorf("other user Borrow: %v", err)
	}
}

func TestBorrow_CreateFailureReleasesCopy(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{
		records:   map[string]*domain.Borrowing{},
		createErr: errors.New("insert failed"),
	}
	s := newTestService(books, borrowings)

	if _, err := s.Borrow(context.Background(), "user-1", "book-1"); err == nil {
		t.Fatal("Borrow should fail when create fails")
	}
	if got := books.books["book-1"].AvailableCopies; got != 1 {
		t.Errorf("availableCopies = %d, want 1 (claimed copy must be released)", got)
	}
}

func TestBorrow_ConcurrentLastCopy(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		userID := "user-1"
		if i%2 == 1 {
			userID = "user-2"
		}
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := s.Borrow(context.Background(), uid, "book-1")
			results <- err
		}(userID)
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrBookUnavailable), errors.Is(err, ErrAlreadyBorrowed):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1 for a single copy", successes)
	}
	if got := books.books["book-1"].AvailableCopies; got != 0 {
		t.Errorf("availableCopies = %d, want 0", got)
	}
}

func TestReturn_OnTime(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	b, err := s.Borrow(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if got := books.books["book-1"].AvailableCopies; got != 0 {
		t.Fatalf("availableCopies after borrow = %d, want 0", got)
	}

	returned, err := s.Return(context.Background(), b.ID, "user-1")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if returned.Status != domain.StatusReturned {
		t.Errorf("status = %q, want returned", returned.Status)
	}
	if returned.ReturnDate == nil {
		t.Error("returnDate should be set")
	}
	if returned.Fine != 0 {
		t.Errorf("fine = %d, want 0 for on-time return", returned.Fine)
	}
	if got := books.books["book-1"].AvailableCopies; got != 1 {
		t.Errorf("availableCopies after return = %d, want 1", got)
	}
}

func TestReturn_OverdueFine(t *testing.T) {
	books := oneBookRepo(1, 1)
	now := time.Now().UTC()
	// Due two days and a bit ago: ceil(2.x days) = 3 days at 5/day = 15.
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{
		"borrowing-1": {
			ID: "borrowing-1", UserID: "user-1", BookID: "book-1",
			BorrowDate: now.AddDate(0, 0, -16),
			DueDate:    now.Add(-(48*time.Hour + time.Millisecond)),
			Status:     domain.StatusBorrowed,
		},
	}}
	books.books["book-1"].AvailableCopies = 0
	s := newTestService(books, borrowings)

	returned, err := s.Return(context.Background(), "borrowing-1", "user-1")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if returned.Fine != 15 {
		t.Errorf("fine = %d, want 15", returned.Fine)
	}
}

func TestReturn_TwiceFailsSecondTime(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	b, err := s.Borrow(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if _, err := s.Return(context.Background(), b.ID, "user-1"); err != nil {
		t.Fatalf("first Return: %v", err)
	}
	if _, err := s.Return(context.Background(), b.ID, "user-1"); !errors.Is(err, ErrBorrowingNotFound) {
		t.Errorf("second Return: got %v, want ErrBorrowingNotFound", err)
	}
	if got := books.books["book-1"].AvailableCopies; got != 1 {
		t.Errorf("availableCopies = %d, want 1 (double return must not double-restore)", got)
	}
}

func TestReturn_WrongUser(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	b, err := s.Borrow(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if _, err := s.Return(context.Background(), b.ID, "user-2"); !errors.Is(err, ErrBorrowingNotFound) {
		t.Errorf("got %v, want ErrBorrowingNotFound", err)
	}
}

func TestReturn_UnknownID(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	if _, err := s.Return(context.Background(), "nope", "user-1"); !errors.Is(err, ErrBorrowingNotFound) {
		t.Errorf("got %v, want ErrBorrowingNotFound", err)
	}
}

func TestBorrowReturnCycle_KeepsCountsInRange(t *testing.T) {
	books := oneBookRepo(1, 1)
	borrowings := &memBorrowingRepo{records: map[string]*domain.Borrowing{}}
	s := newTestService(books, borrowings)

	for i := 0; i < 5; i++ {
		b, err := s.Borrow(context.Background(), "user-1", "book-1")
		if err != nil {
			t.Fatalf("cycle %d Borrow: %v", i, err)
		}
		if got := books.books["book-1"].AvailableCopies; got != 0 {
			t.Fatalf("cycle %d availableCopies = %d, want 0", i, got)
		}
		if _, err := s.Return(context.Background(), b.ID, "user-1"); err != nil {
			t.Fatalf("cycle %d Return: %v", i, err)
		}
		if got := books.books["book-1"].AvailableCopies; got != 1 {
			t.Fatalf("cycle %d availableCopies = %d, want 1", i, got)
		}
	}
}
