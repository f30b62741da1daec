package repository

import (
	"context"

	"academic-records/internal/config"
	"academic-records/internal/infrastructure/flatfile"
	interfaces "academic-records/internal/interfaces/infrastructure"
)

// Repositories groups one store per entity type.
type Repositories struct {
	Students    interfaces.StudentRepository
	Classes     interfaces.ClassRepository
	Lessons     interfaces.LessonRepository
	Enrollments interfaces.EnrollmentRepository
	Activities  interfaces.ActivityRepository
	Users       interfaces.UserRepository
}

// NewRepositories builds the stores described by the storage config.
func NewRepositories(cfg config.StorageConfig) *Repositories {
	return &Repositories{
		Students:    NewStudentRepository(cfg.Path(cfg.Students), cfg.Students.Capacity),
		Classes:     NewClassRepository(cfg.Path(cfg.Classes), cfg.Classes.Capacity),
		Lessons:     NewLessonRepository(cfg.Path(cfg.Lessons), cfg.Lessons.Capacity),
		Enrollments: NewEnrollmentRepository(cfg.Path(cfg.Enrollments), cfg.Enrollments.Capacity),
		Activities:  NewActivityRepository(cfg.Path(cfg.Activities), cfg.Activities.Capacity),
		Users:       NewUserRepository(cfg.Path(cfg.Users), cfg.Users.Capacity),
	}
}

type statser interface {
	Stats(ctx context.Context) (flatfile.Stats, error)
	Touch(ctx context.Context) (bool, error)
}

func (r *Repositories) all() []statser {
	return []statser{r.Students, r.Classes, r.Lessons, r.Enrollments, r.Activities, r.Users}
}

// Stats reports every store in a fixed order. A store that cannot be read is
// returned with its error and the remaining stores are still reported.
func (r *Repositories) Stats(ctx context.Context) ([]flatfile.Stats, error) {
	out := make([]flatfile.Stats, 0, 6)
	var firstErr error
	for _, s := range r.all() {
		st, err := s.Stats(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, st)
	}
	return out, firstErr
}

// Touch creates header-only files for every store that has none and returns
// the paths it created.
func (r *Repositories) Touch(ctx context.Context) ([]string, error) {
	var created []string
	for _, s := range r.all() {
		ok, err := s.Touch(ctx)
		if err != nil {
			return created, err
		}
		if ok {
			st, _ := s.Stats(ctx)
			created = append(created, st.Path)
		}
	}
	return created, nil
}
