package service

import (
	"context"
	"io"

	"academic-records/internal/domain/academic"
	"academic-records/internal/domain/user"
	"academic-records/internal/infrastructure/flatfile"
)

// RecordsService is what the TCP dispatcher, the menu and the status API call
// to work with academic records.
type RecordsService interface {
	RegisterStudent(ctx context.Context, student *academic.Student) error
	GetStudent(ctx context.Context, ra int) (*academic.Student, error)
	ListStudents(ctx context.Context, limit int) ([]academic.Student, error)
	UpdateStudent(ctx context.Context, student *academic.Student) error
	DeleteStudent(ctx context.Context, ra int) error
	SuggestRA(ctx context.Context) (int, error)

	CreateClass(ctx context.Context, class *academic.ClassSection) (int, error)
	GetClass(ctx context.Context, id int) (*academic.ClassSection, error)
	ListClasses(ctx context.Context, limit int) ([]academic.ClassSection, error)
	UpdateClass(ctx context.Context, class *academic.ClassSection) error
	DeleteClass(ctx context.Context, id int) error

	RecordLesson(ctx context.Context, lesson *academic.Lesson) (int, error)
	GetLesson(ctx context.Context, id int) (*academic.Lesson, error)
	UpdateLesson(ctx context.Context, lesson *academic.Lesson) error
	DeleteLesson(ctx context.Context, id int) error
	ListLessonsByClass(ctx context.Context, classID, limit int) ([]academic.Lesson, error)
	ListLessonsByDate(ctx context.Context, date string, limit int) ([]academic.Lesson, error)
	ListLessonsInPeriod(ctx context.Context, classID int, from, to string, limit int) ([]academic.Lesson, error)

	Enroll(ctx context.Context, ra, classID int) (academic.AssociateOutcome, error)
	Unenroll(ctx context.Context, ra, classID int) error
	StudentsOfClass(ctx context.Context, classID int) ([]academic.Student, error)
	ClassesOfStudent(ctx context.Context, ra int) ([]academic.ClassSection, error)

	PublishActivity(ctx context.Context, activity *academic.Activity) (int, error)
	GetActivity(ctx context.Context, id int) (*academic.Activity, error)
	ListActivitiesByClass(ctx context.Context, classID, limit int) ([]academic.Activity, error)
	DeleteActivity(ctx context.Context, id int) error

	Stats(ctx context.Context) ([]flatfile.Stats, error)
}

// ReportService renders class diaries.
type ReportService interface {
	GenerateClassReport(ctx context.Context, classID int, w io.Writer) (int, error)
	WriteClassReport(ctx context.Context, classID int, path string) (int, error)
}

// Auditor records login attempts and user actions.
type Auditor interface {
	LoginAttempt(ctx context.Context, login string, success bool, detail string)
	Action(ctx context.Context, session *user.Session, action, detail string, success bool)
}
