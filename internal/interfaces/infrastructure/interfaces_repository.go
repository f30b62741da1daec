package interfaces

import (
	"context"

	"academic-records/internal/domain/academic"
	"academic-records/internal/domain/user"
	"academic-records/internal/infrastructure/flatfile"
)

// RecordStore is the operation set shared by every entity store.
type RecordStore[T any, K comparable] interface {
	Name() string
	Insert(ctx context.Context, rec *T) error
	FindByKey(ctx context.Context, key K) (T, error)
	List(ctx context.Context, limit int) ([]T, error)
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, key K) error
	Stats(ctx context.Context) (flatfile.Stats, error)
	Touch(ctx context.Context) (bool, error)
}

// SequencedStore hands out numeric ids.
type SequencedStore[T any] interface {
	NextID(ctx context.Context) (int, error)
	Create(ctx context.Context, rec *T) (int, error)
}

type StudentRepository interface {
	RecordStore[academic.Student, int]
	NextID(ctx context.Context) (int, error)
}

type ClassRepository interface {
	RecordStore[academic.ClassSection, int]
	SequencedStore[academic.ClassSection]
}

type LessonRepository interface {
	RecordStore[academic.Lesson, int]
	SequencedStore[academic.Lesson]
	ListByClass(ctx context.Context, classID, limit int) ([]academic.Lesson, error)
	ListByDate(ctx context.Context, date string, limit int) ([]academic.Lesson, error)
	ListInPeriod(ctx context.Context, classID int, from, to string, limit int) ([]academic.Lesson, error)
	CountByClass(ctx context.Context, classID int) (int, error)
}

type ActivityRepository interface {
	RecordStore[academic.Activity, int]
	SequencedStore[academic.Activity]
	ListByClass(ctx context.Context, classID, limit int) ([]academic.Activity, error)
}

type EnrollmentRepository interface {
	RecordStore[academic.Enrollment, academic.EnrollmentKey]
	Associate(ctx context.Context, ra, classID int) (academic.AssociateOutcome, error)
	Dissociate(ctx context.Context, ra, classID int) error
	ListByClass(ctx context.Context, classID int) ([]int, error)
	ListByStudent(ctx context.Context, ra int) ([]int, error)
	IsAssociated(ctx context.Context, ra, classID int) (bool, error)
}

type UserRepository interface {
	RecordStore[user.User, int]
	SequencedStore[user.User]
	FindByLogin(ctx context.Context, login string) (user.User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
}
