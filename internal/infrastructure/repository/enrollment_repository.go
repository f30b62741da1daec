package repository

import (
	"context"
	"errors"

	"academic-records/internal/domain/academic"
	"academic-records/internal/infrastructure/flatfile"
	interfaces "academic-records/internal/interfaces/infrastructure"
	"academic-records/pkg/apperror"
)

// EnrollmentRepository holds (RA, class id) pairs. Neither side is checked
// against the student or class stores.
type EnrollmentRepository struct {
	*FileStore[academic.Enrollment, academic.EnrollmentKey]
}

func NewEnrollmentRepository(path string, capacity int) interfaces.EnrollmentRepository {
	return &EnrollmentRepository{
		FileStore: NewFileStore(StoreOptions[academic.Enrollment, academic.EnrollmentKey]{
			Name:     "enrollments",
			Path:     path,
			Capacity: capacity,
			Codec:    flatfile.EnrollmentCodec{},
			Key:      academic.Enrollment.Key,
		}),
	}
}

// Associate records the pair. An existing pair is left alone and reported as
// AlreadyAssociated without an error.
func (r *EnrollmentRepository) Associate(ctx context.Context, ra, classID int) (academic.AssociateOutcome, error) {
	err := r.Insert(ctx, &academic.Enrollment{RA: ra, ClassID: classID})
	if errors.Is(err, apperror.ErrDuplicateKey) {
		return academic.AlreadyAssociated, nil
	}
	if err != nil {
		return academic.Associated, err
	}
	return academic.Associated, nil
}

// Dissociate removes the pair, compacting the remaining ones.
func (r *EnrollmentRepository) Dissociate(ctx context.Context, ra, classID int) error {
	return r.Delete(ctx, academic.EnrollmentKey{RA: ra, ClassID: classID})
}

// ListByClass returns the RAs enrolled in classID.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID int) ([]int, error) {
	pairs, err := r.Filter(ctx, func(e academic.Enrollment) bool { return e.ClassID == classID }, everything)
	if err != nil {
		return nil, err
	}
	ras := make([]int, 0, len(pairs))
	for _, p := range pairs {
		ras = append(ras, p.RA)
	}
	return ras, nil
}

// ListByStudent returns the class ids the student is enrolled in.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, ra int) ([]int, error) {
	pairs, err := r.Filter(ctx, func(e academic.Enrollment) bool { return e.RA == ra }, everything)
	if err != nil {
		return nil, err
	}
	classes := make([]int, 0, len(pairs))
	for _, p := range pairs {
		classes = append(classes, p.ClassID)
	}
	return classes, nil
}

func (r *EnrollmentRepository) IsAssociated(ctx context.Context, ra, classID int) (bool, error) {
	_, err := r.FindByKey(ctx, academic.EnrollmentKey{RA: ra, ClassID: classID})
	if errors.Is(err, apperror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
