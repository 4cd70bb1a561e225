package service

import (
	"context"
	"time"

	"nalanda-library-system/backend/internal/borrowing/domain"
	"nalanda-library-system/backend/internal/config"
	reportrepo "nalanda-library-system/backend/internal/report/repository"
)

// OverdueEntry is an overdue borrowing with the fine it would incur if
// returned now. Nothing is written; the fine on the record stays zero until
// the actual return.
type OverdueEntry struct {
	Borrowing     *domain.Borrowing
	DaysOverdue   int64
	ProjectedFine int64
}

// ReportService serves the admin reports. Aggregations run in SQL; the only
// computation here is projecting fines for overdue borrowings.
type ReportService struct {
	repo   reportrepo.Repository
	policy config.Policy
	now    func() time.Time
}

func NewReportService(repo reportrepo.Repository, policy config.Policy) *ReportService {
	return &ReportService{repo: repo, policy: policy, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ReportService) MostBorrowedBooks(ctx context.Context, dr reportrepo.DateRange, limit int) ([]reportrepo.BookBorrowStats, error) {
	return s.repo.MostBorrowedBooks(ctx, dr, limit)
}

func (s *ReportService) MostActiveMembers(ctx context.Context, limit int) ([]reportrepo.MemberActivity, error) {
	return s.repo.MostActiveMembers(ctx, limit)
}

func (s *ReportService) AvailabilitySummary(ctx context.Context) (*reportrepo.AvailabilitySummary, error) {
	return s.repo.AvailabilitySummary(ctx, s.now())
}

// Overdue lists still-borrowed records past their due date, each with the
// fine a return at this moment would assess.
func (s *ReportService) Overdue(ctx context.Context) ([]OverdueEntry, error) {
	now := s.now()
	borrowings, err := s.repo.OverdueBorrowings(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]OverdueEntry, len(borrowings))
	for i, b := range borrowings {
		days := domain.DaysLate(b.DueDate, now)
		out[i] = OverdueEntry{
			Borrowing:     b,
			DaysOverdue:   days,
			ProjectedFine: days * s.policy.FinePerDay,
		}
	}
	return out, nil
}
