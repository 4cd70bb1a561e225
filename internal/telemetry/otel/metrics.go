package otel

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// LendingMetrics holds the counters the borrowing service records.
// A nil *LendingMetrics is valid and records nothing.
type LendingMetrics struct {
	borrows metric.Int64Counter
	returns metric.Int64Counter
	fines   metric.Int64Counter
}

// NewLendingMetrics creates the lending counters on the given meter provider.
func NewLendingMetrics(mp metric.MeterProvider) (*LendingMetrics, error) {
	meter := mp.Meter("library/lending")
	borrows, err := meter.Int64Counter("library.borrows.total",
		metric.WithDescription("Number of successful borrow operations"))
	if err != nil {
		return nil, err
	}
	returns, err := meter.Int64Counter("library.returns.total",
		metric.WithDescription("Number of successful return operations"))
	if err != nil {
		return nil, err
	}
	fines, err := meter.Int64Counter("library.fines.assessed",
		metric.WithDescription("Sum of fines assessed on return, in currency units"))
	if err != nil {
		return nil, err
	}
	return &LendingMetrics{borrows: borrows, returns: returns, fines: fines}, nil
}

// RecordBorrow counts one successful borrow.
func (m *LendingMetrics) RecordBorrow(ctx context.Context) {
	if m == nil {
		return
	}
	m.borrows.Add(ctx, 1)
}

// RecordReturn counts one successful return and any fine assessed with it.
func (m *LendingMetrics) RecordReturn(ctx context.Context, fine int64) {
	if m == nil {
		return
	}
	m.returns.Add(ctx, 1)
	if fine > 0 {
		m.fines.Add(ctx, fine)
	}
}
