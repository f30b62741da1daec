package repository

import (
	"context"
	"errors"
	"testing"

	"academic-records/internal/domain/academic"
	"academic-records/pkg/apperror"
)

func seedLessons(t *testing.T, repo interface {
	Create(ctx context.Context, l *academic.Lesson) (int, error)
}, lessons []academic.Lesson) {
	t.Helper()
	for i := range lessons {
		if _, err := repo.Create(context.Background(), &lessons[i]); err != nil {
			t.Fatalf("Failed to seed lesson: %v", err)
		}
	}
}

func TestLessonQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewLessonRepository(tempPath(t, "aulas.csv"), 100)

	seedLessons(t, repo, []academic.Lesson{
		{ClassID: 1, Date: "28/02/2025", Content: "Introducao"},
		{ClassID: 1, Date: "05/03/2025", Content: "Vetores"},
		{ClassID: 2, Date: "05/03/2025", Content: "Redes"},
		{ClassID: 1, Date: "02/04/2025", Content: "Listas"},
		{ClassID: 1, Date: "15/01/2026", Content: "Revisao"},
	})

	byClass, err := repo.ListByClass(ctx, 1, 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(byClass) != 4 {
		t.Errorf("Expected 4 lessons for class 1, got %d", len(byClass))
	}

	byDate, err := repo.ListByDate(ctx, "05/03/2025", 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(byDate) != 2 {
		t.Errorf("Expected 2 lessons on 05/03/2025, got %d", len(byDate))
	}

	// String comparison would wrongly include 15/01/2026 in this window.
	period, err := repo.ListInPeriod(ctx, 1, "01/03/2025", "30/04/2025", 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(period) != 2 || period[0].Content != "Vetores" || period[1].Content != "Listas" {
		t.Errorf("Unexpected period result %+v", period)
	}

	count, err := repo.CountByClass(ctx, 1)
	if err != nil || count != 4 {
		t.Errorf("Expected 4, got %d (%v)", count, err)
	}
}

func TestLessonQueries_RejectBadDates(t *testing.T) {
	ctx := context.Background()
	repo := NewLessonRepository(tempPath(t, "aulas.csv"), 100)

	if _, err := repo.ListByDate(ctx, "2025-03-05", 10); !errors.Is(err, apperror.ErrValidationFailed) {
		t.Errorf("Expected ErrValidationFailed, got %v", err)
	}
	if _, err := repo.ListInPeriod(ctx, 1, "01/03/2025", "32/03/2025", 10); !errors.Is(err, apperror.ErrValidationFailed) {
		t.Errorf("Expected ErrValidationFailed, got %v", err)
	}
	if _, err := repo.ListInPeriod(ctx, 1, "01/04/2025", "01/03/2025", 10); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}
