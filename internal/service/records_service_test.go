package service

import (
	"context"
	"errors"
	"testing"

	"academic-records/internal/domain/academic"
	"academic-records/pkg/apperror"
)

func TestRecordsService_SuggestRA(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	svc := NewRecordsService(repos, false)

	ra, err := svc.SuggestRA(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ra != academic.StudentRAFloor {
		t.Errorf("Expected %d on empty store, got %d", academic.StudentRAFloor, ra)
	}

	if err := svc.RegisterStudent(ctx, &academic.Student{RA: 5, Name: "Ana"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ra, _ = svc.SuggestRA(ctx)
	if ra != academic.StudentRAFloor {
		t.Errorf("Expected floor to apply, got %d", ra)
	}

	if err := svc.RegisterStudent(ctx, &academic.Student{RA: 2024, Name: "Bia"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ra, _ = svc.SuggestRA(ctx)
	if ra != 2025 {
		t.Errorf("Expected 2025, got %d", ra)
	}
}

func TestRecordsService_RegisterStudentActivates(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordsService(newTestRepositories(t), false)

	if err := svc.RegisterStudent(ctx, &academic.Student{RA: 1, Name: "Ana", Active: false}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, err := svc.GetStudent(ctx, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !got.Active {
		t.Error("Expected new student to be active")
	}

	if err := svc.RegisterStudent(ctx, nil); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestRecordsService_EnrollLenientAndStrict(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)

	lenient := NewRecordsService(repos, false)
	if _, err := lenient.Enroll(ctx, 77, 88); err != nil {
		t.Errorf("Expected dangling enrollment to be allowed, got %v", err)
	}

	strict := NewRecordsService(repos, true)
	if _, err := strict.Enroll(ctx, 1, 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := strict.RegisterStudent(ctx, &academic.Student{RA: 1, Name: "Ana"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	classID, err := strict.CreateClass(ctx, &academic.ClassSection{Name: "Algoritmos", Instructor: "Lima", Year: 2025, Term: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	outcome, err := strict.Enroll(ctx, 1, classID)
	if err != nil || outcome != academic.Associated {
		t.Fatalf("Expected Associated, got %v, %v", outcome, err)
	}
	outcome, err = strict.Enroll(ctx, 1, classID)
	if err != nil || outcome != academic.AlreadyAssociated {
		t.Errorf("Expected AlreadyAssociated, got %v, %v", outcome, err)
	}

	students, err := strict.StudentsOfClass(ctx, classID)
	if err != nil || len(students) != 1 || students[0].Name != "Ana" {
		t.Errorf("Unexpected roster %+v (%v)", students, err)
	}
	classes, err := strict.ClassesOfStudent(ctx, 1)
	if err != nil || len(classes) != 1 || classes[0].ID != classID {
		t.Errorf("Unexpected classes %+v (%v)", classes, err)
	}

	// The dangling pair from the lenient service resolves to nothing.
	roster, _ := strict.StudentsOfClass(ctx, 88)
	if len(roster) != 0 {
		t.Errorf("Expected unresolved RA to be skipped, got %+v", roster)
	}

	if err := strict.Unenroll(ctx, 1, classID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := strict.Unenroll(ctx, 1, classID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecordsService_LessonsAndActivities(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordsService(newTestRepositories(t), false)

	id, err := svc.RecordLesson(ctx, &academic.Lesson{ClassID: 3, Date: "10/03/2025", Content: "Ponteiros"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != 1 {
		t.Errorf("Expected id 1, got %d", id)
	}

	if _, err := svc.RecordLesson(ctx, &academic.Lesson{ClassID: 3, Date: "10-03-2025"}); !errors.Is(err, apperror.ErrValidationFailed) {
		t.Errorf("Expected ErrValidationFailed, got %v", err)
	}

	lessons, err := svc.ListLessonsByClass(ctx, 3, 10)
	if err != nil || len(lessons) != 1 {
		t.Errorf("Expected 1 lesson, got %d (%v)", len(lessons), err)
	}

	aid, err := svc.PublishActivity(ctx, &academic.Activity{ClassID: 3, Title: "Lista 1", FilePath: "uploads/l1.pdf"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	acts, _ := svc.ListActivitiesByClass(ctx, 3, 10)
	if len(acts) != 1 || acts[0].ID != aid {
		t.Errorf("Unexpected activities %+v", acts)
	}

	if err := svc.DeleteActivity(ctx, aid); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.GetActivity(ctx, aid); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecordsService_Stats(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordsService(newTestRepositories(t), false)

	_ = svc.RegisterStudent(ctx, &academic.Student{RA: 1, Name: "Ana"})

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(stats) != 6 {
		t.Fatalf("Expected 6 stores, got %d", len(stats))
	}
	if stats[0].Name != "students" || stats[0].Records != 1 {
		t.Errorf("Unexpected student stats %+v", stats[0])
	}
}
