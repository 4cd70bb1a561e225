package otel

import (
	"context"
	"testing"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "library-backend", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil {
		t.Fatal("providers should be non-nil no-ops")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	p.SetGlobal()
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "http://", "library-backend", false); err == nil {
		t.Error("endpoint without host should fail")
	}
}

func TestLendingMetrics(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "library-backend", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	m, err := NewLendingMetrics(p.MeterProvider)
	if err != nil {
		t.Fatalf("NewLendingMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordBorrow(ctx)
	m.RecordReturn(ctx, 15)
	m.RecordReturn(ctx, 0)

	var nilMetrics *LendingMetrics
	nilMetrics.RecordBorrow(ctx)
	nilMetrics.RecordReturn(ctx, 5)
}
