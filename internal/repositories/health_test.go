package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/voltline/site/internal/domain"
)

func TestDependencyHealthAllOK(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo, err := NewDependencyHealth([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "storage", Check: func(context.Context) error { return nil }},
	}, WithDependencyClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewDependencyHealth: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Status != domain.HealthStatusOK || len(report.Checks) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !report.GeneratedAt.Equal(now) {
		t.Fatalf("expected generated at %s, got %s", now, report.GeneratedAt)
	}
}

func TestDependencyHealthDegradedAndTimeout(t *testing.T) {
	repo, err := NewDependencyHealth([]DependencyCheck{
		{Name: "pubsub", Check: func(context.Context) error { return errors.New("topic missing") }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealth: %v", err)
	}
	report, _ := repo.Collect(context.Background())
	if report.Status != domain.HealthStatusDegraded || report.Checks["pubsub"].Detail != "topic missing" {
		t.Fatalf("expected degraded, got %+v", report)
	}

	repo, err = NewDependencyHealth([]DependencyCheck{
		{Name: "firestore", Timeout: 10 * time.Millisecond, Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
		{Name: "storage", Check: func(context.Context) error { return errors.New("slow") }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealth: %v", err)
	}
	report, _ = repo.Collect(context.Background())
	if report.Status != domain.HealthStatusError {
		t.Fatalf("expected error status, got %s", report.Status)
	}
	if report.Checks["firestore"].Detail != "timeout" {
		t.Fatalf("expected timeout detail, got %q", report.Checks["firestore"].Detail)
	}
}

func TestDependencyHealthRequiresChecks(t *testing.T) {
	if _, err := NewDependencyHealth(nil); err == nil {
		t.Fatal("expected error for empty checks")
	}
	if _, err := NewDependencyHealth([]DependencyCheck{{Name: "x"}}); err == nil {
		t.Fatal("expected error for missing function")
	}
}
