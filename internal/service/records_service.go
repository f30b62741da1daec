package service

import (
	"context"
	"errors"
	"fmt"

	"academic-records/internal/domain/academic"
	"academic-records/internal/infrastructure/flatfile"
	"academic-records/internal/infrastructure/repository"
	serviceInterfaces "academic-records/internal/interfaces/service"
	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"
)

type recordsService struct {
	repos            *repository.Repositories
	strictReferences bool
}

// NewRecordsService builds the record operations over repos. With
// strictReferences, enrolling requires both the student and the class to
// exist.
func NewRecordsService(repos *repository.Repositories, strictReferences bool) serviceInterfaces.RecordsService {
	return &recordsService{
		repos:            repos,
		strictReferences: strictReferences,
	}
}

// Students

func (s *recordsService) RegisterStudent(ctx context.Context, student *academic.Student) error {
	if student == nil {
		return fmt.Errorf("%w: student is nil", apperror.ErrInvalidArgument)
	}
	student.Active = true

	if err := s.repos.Students.Insert(ctx, student); err != nil {
		return fmt.Errorf("failed to register student: %w", err)
	}
	logger.Info("Student %d registered", student.RA)
	return nil
}

func (s *recordsService) GetStudent(ctx context.Context, ra int) (*academic.Student, error) {
	student, err := s.repos.Students.FindByKey(ctx, ra)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (s *recordsService) ListStudents(ctx context.Context, limit int) ([]academic.Student, error) {
	return s.repos.Students.List(ctx, limit)
}

func (s *recordsService) UpdateStudent(ctx context.Context, student *academic.Student) error {
	if err := s.repos.Students.Update(ctx, student); err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (s *recordsService) DeleteStudent(ctx context.Context, ra int) error {
	if err := s.repos.Students.Delete(ctx, ra); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	logger.Info("Student %d deactivated", ra)
	return nil
}

// SuggestRA proposes the next registration number, never below
// academic.StudentRAFloor.
func (s *recordsService) SuggestRA(ctx context.Context) (int, error) {
	next, err := s.repos.Students.NextID(ctx)
	if err != nil {
		return 0, err
	}
	if next < academic.StudentRAFloor {
		return academic.StudentRAFloor, nil
	}
	return next, nil
}

// Classes

func (s *recordsService) CreateClass(ctx context.Context, class *academic.ClassSection) (int, error) {
	id, err := s.repos.Classes.Create(ctx, class)
	if err != nil {
		return 0, fmt.Errorf("failed to create class: %w", err)
	}
	logger.Info("Class %d created: %s", id, class.Name)
	return id, nil
}

func (s *recordsService) GetClass(ctx context.Context, id int) (*academic.ClassSection, error) {
	class, err := s.repos.Classes.FindByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &class, nil
}

func (s *recordsService) ListClasses(ctx context.Context, limit int) ([]academic.ClassSection, error) {
	return s.repos.Classes.List(ctx, limit)
}

func (s *recordsService) UpdateClass(ctx context.Context, class *academic.ClassSection) error {
	if err := s.repos.Classes.Update(ctx, class); err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}
	return nil
}

// DeleteClass removes the class only. Lessons, activities and enrollments
// that point at it are left in place.
func (s *recordsService) DeleteClass(ctx context.Context, id int) error {
	if err := s.repos.Classes.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}
	logger.Info("Class %d deleted", id)
	return nil
}

// Lessons

func (s *recordsService) RecordLesson(ctx context.Context, lesson *academic.Lesson) (int, error) {
	id, err := s.repos.Lessons.Create(ctx, lesson)
	if err != nil {
		return 0, fmt.Errorf("failed to record lesson: %w", err)
	}
	logger.Info("Lesson %d recorded for class %d on %s", id, lesson.ClassID, lesson.Date)
	return id, nil
}

func (s *recordsService) GetLesson(ctx context.Context, id int) (*academic.Lesson, error) {
	lesson, err := s.repos.Lessons.FindByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (s *recordsService) UpdateLesson(ctx context.Context, lesson *academic.Lesson) error {
	if err := s.repos.Lessons.Update(ctx, lesson); err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

func (s *recordsService) DeleteLesson(ctx context.Context, id int) error {
	if err := s.repos.Lessons.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}

func (s *recordsService) ListLessonsByClass(ctx context.Context, classID, limit int) ([]academic.Lesson, error) {
	return s.repos.Lessons.ListByClass(ctx, classID, limit)
}

func (s *recordsService) ListLessonsByDate(ctx context.Context, date string, limit int) ([]academic.Lesson, error) {
	return s.repos.Lessons.ListByDate(ctx, date, limit)
}

func (s *recordsService) ListLessonsInPeriod(ctx context.Context, classID int, from, to string, limit int) ([]academic.Lesson, error) {
	return s.repos.Lessons.ListInPeriod(ctx, classID, from, to, limit)
}

// Enrollments

// Enroll associates a student with a class. Each store is consulted on its
// own; nothing is rolled back if a later step fails.
func (s *recordsService) Enroll(ctx context.Context, ra, classID int) (academic.AssociateOutcome, error) {
	if s.strictReferences {
		if _, err := s.repos.Students.FindByKey(ctx, ra); err != nil {
			return academic.Associated, fmt.Errorf("failed to enroll: %w", err)
		}
		if _, err := s.repos.Classes.FindByKey(ctx, classID); err != nil {
			return academic.Associated, fmt.Errorf("failed to enroll: %w", err)
		}
	}

	outcome, err := s.repos.Enrollments.Associate(ctx, ra, classID)
	if err != nil {
		return outcome, fmt.Errorf("failed to enroll: %w", err)
	}
	logger.Info("Student %d enrollment in class %d: %s", ra, classID, outcome)
	return outcome, nil
}

func (s *recordsService) Unenroll(ctx context.Context, ra, classID int) error {
	if err := s.repos.Enrollments.Dissociate(ctx, ra, classID); err != nil {
		return fmt.Errorf("failed to unenroll: %w", err)
	}
	return nil
}

// StudentsOfClass resolves the class roster. RAs without a student record
// are skipped.
func (s *recordsService) StudentsOfClass(ctx context.Context, classID int) ([]academic.Student, error) {
	ras, err := s.repos.Enrollments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	students := make([]academic.Student, 0, len(ras))
	for _, ra := range ras {
		st, err := s.repos.Students.FindByKey(ctx, ra)
		if errors.Is(err, apperror.ErrNotFound) {
			logger.Debug("Class %d lists unknown student %d", classID, ra)
			continue
		}
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, nil
}

// ClassesOfStudent resolves the classes a student is enrolled in. Class ids
// without a class record are skipped.
func (s *recordsService) ClassesOfStudent(ctx context.Context, ra int) ([]academic.ClassSection, error) {
	ids, err := s.repos.Enrollments.ListByStudent(ctx, ra)
	if err != nil {
		return nil, err
	}

	classes := make([]academic.ClassSection, 0, len(ids))
	for _, id := range ids {
		c, err := s.repos.Classes.FindByKey(ctx, id)
		if errors.Is(err, apperror.ErrNotFound) {
			logger.Debug("Student %d enrolled in unknown class %d", ra, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}

// Activities

func (s *recordsService) PublishActivity(ctx context.Context, activity *academic.Activity) (int, error) {
	id, err := s.repos.Activities.Create(ctx, activity)
	if err != nil {
		return 0, fmt.Errorf("failed to publish activity: %w", err)
	}
	logger.Info("Activity %d published for class %d", id, activity.ClassID)
	return id, nil
}

func (s *recordsService) GetActivity(ctx context.Context, id int) (*academic.Activity, error) {
	a, err := s.repos.Activities.FindByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}

func (s *recordsService) ListActivitiesByClass(ctx context.Context, classID, limit int) ([]academic.Activity, error) {
	return s.repos.Activities.ListByClass(ctx, classID, limit)
}

func (s *recordsService) DeleteActivity(ctx context.Context, id int) error {
	if err := s.repos.Activities.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

func (s *recordsService) Stats(ctx context.Context) ([]flatfile.Stats, error) {
	return s.repos.Stats(ctx)
}
