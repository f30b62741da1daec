package repository

import (
	"context"
	"fmt"
	"math"

	"academic-records/internal/domain/academic"
	"academic-records/internal/infrastructure/flatfile"
	interfaces "academic-records/internal/interfaces/infrastructure"
	"academic-records/pkg/apperror"
	"academic-records/pkg/validator"
)

// LessonRepository is the class diary.
type LessonRepository struct {
	*FileStore[academic.Lesson, int]
}

func NewLessonRepository(path string, capacity int) interfaces.LessonRepository {
	return &LessonRepository{
		FileStore: NewFileStore(StoreOptions[academic.Lesson, int]{
			Name:      "lessons",
			Path:      path,
			Capacity:  capacity,
			Codec:     flatfile.LessonCodec{},
			Key:       func(l academic.Lesson) int { return l.ID },
			ID:        func(l academic.Lesson) int { return l.ID },
			SetID:     func(l *academic.Lesson, id int) { l.ID = id },
			Normalize: (*academic.Lesson).Normalize,
		}),
	}
}

func (r *LessonRepository) ListByClass(ctx context.Context, classID, limit int) ([]academic.Lesson, error) {
	return r.Filter(ctx, func(l academic.Lesson) bool { return l.ClassID == classID }, limit)
}

func (r *LessonRepository) ListByDate(ctx context.Context, date string, limit int) ([]academic.Lesson, error) {
	if !validator.IsDiaryDate(date) {
		return nil, fmt.Errorf("%w: date %q is not DD/MM/YYYY", apperror.ErrValidationFailed, date)
	}
	return r.Filter(ctx, func(l academic.Lesson) bool { return l.Date == date }, limit)
}

// ListInPeriod returns lessons of a class dated between from and to,
// inclusive, compared as calendar dates.
func (r *LessonRepository) ListInPeriod(ctx context.Context, classID int, from, to string, limit int) ([]academic.Lesson, error) {
	start, ok := validator.DiaryDateKey(from)
	if !ok {
		return nil, fmt.Errorf("%w: date %q is not DD/MM/YYYY", apperror.ErrValidationFailed, from)
	}
	end, ok := validator.DiaryDateKey(to)
	if !ok {
		return nil, fmt.Errorf("%w: date %q is not DD/MM/YYYY", apperror.ErrValidationFailed, to)
	}
	if start > end {
		return nil, fmt.Errorf("%w: period starts after it ends", apperror.ErrInvalidArgument)
	}

	return r.Filter(ctx, func(l academic.Lesson) bool {
		if l.ClassID != classID {
			return false
		}
		day, ok := validator.DiaryDateKey(l.Date)
		return ok && day >= start && day <= end
	}, limit)
}

func (r *LessonRepository) CountByClass(ctx context.Context, classID int) (int, error) {
	return r.Count(ctx, func(l academic.Lesson) bool { return l.ClassID == classID })
}

// everything is used where a query has no caller supplied limit.
const everything = math.MaxInt
