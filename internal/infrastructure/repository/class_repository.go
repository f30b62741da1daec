package repository

import (
	"academic-records/internal/domain/academic"
	"academic-records/internal/infrastructure/flatfile"
	interfaces "academic-records/internal/interfaces/infrastructure"
)

type ClassRepository struct {
	*FileStore[academic.ClassSection, int]
}

func NewClassRepository(path string, capacity int) interfaces.ClassRepository {
	return &ClassRepository{
		FileStore: NewFileStore(StoreOptions[academic.ClassSection, int]{
			Name:      "classes",
			Path:      path,
			Capacity:  capacity,
			Codec:     flatfile.ClassCodec{},
			Key:       func(c academic.ClassSection) int { return c.ID },
			ID:        func(c academic.ClassSection) int { return c.ID },
			SetID:     func(c *academic.ClassSection, id int) { c.ID = id },
			Normalize: (*academic.ClassSection).Normalize,
		}),
	}
}
