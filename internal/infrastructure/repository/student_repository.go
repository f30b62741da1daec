package repository

import (
	"academic-records/internal/domain/academic"
	"academic-records/internal/infrastructure/flatfile"
	interfaces "academic-records/internal/interfaces/infrastructure"
)

type StudentRepository struct {
	*FileStore[academic.Student, int]
}

// NewStudentRepository stores students keyed by RA. Deleting a student only
// marks it inactive, so an RA is never reused.
func NewStudentRepository(path string, capacity int) interfaces.StudentRepository {
	return &StudentRepository{
		FileStore: NewFileStore(StoreOptions[academic.Student, int]{
			Name:       "students",
			Path:       path,
			Capacity:   capacity,
			Codec:      flatfile.StudentCodec{},
			Key:        func(s academic.Student) int { return s.RA },
			ID:         func(s academic.Student) int { return s.RA },
			Deactivate: func(s *academic.Student) { s.Active = false },
			Normalize:  (*academic.Student).Normalize,
		}),
	}
}
