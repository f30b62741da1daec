package repository

import (
	"context"

	"academic-records/internal/domain/academic"
	"academic-records/internal/infrastructure/flatfile"
	interfaces "academic-records/internal/interfaces/infrastructure"
)

type ActivityRepository struct {
	*FileStore[academic.Activity, int]
}

func NewActivityRepository(path string, capacity int) interfaces.ActivityRepository {
	return &ActivityRepository{
		FileStore: NewFileStore(StoreOptions[academic.Activity, int]{
			Name:      "activities",
			Path:      path,
			Capacity:  capacity,
			Codec:     flatfile.ActivityCodec{},
			Key:       func(a academic.Activity) int { return a.ID },
			ID:        func(a academic.Activity) int { return a.ID },
			SetID:     func(a *academic.Activity, id int) { a.ID = id },
			Normalize: (*academic.Activity).Normalize,
		}),
	}
}

func (r *ActivityRepository) ListByClass(ctx context.Context, classID, limit int) ([]academic.Activity, error) {
	return r.Filter(ctx, func(a academic.Activity) bool { return a.ClassID == classID }, limit)
}
