package repository

import (
	"context"
	"fmt"

	"academic-records/internal/domain/user"
	"academic-records/internal/infrastructure/flatfile"
	interfaces "academic-records/internal/interfaces/infrastructure"
	"academic-records/pkg/apperror"
)

// UserRepository stores accounts keyed by id with a case-sensitive unique
// login. Deleting a user only marks it inactive.
type UserRepository struct {
	*FileStore[user.User, int]
}

func NewUserRepository(path string, capacity int) interfaces.UserRepository {
	return &UserRepository{
		FileStore: NewFileStore(StoreOptions[user.User, int]{
			Name:       "users",
			Path:       path,
			Capacity:   capacity,
			Codec:      flatfile.UserCodec{},
			Key:        func(u user.User) int { return u.ID },
			ID:         func(u user.User) int { return u.ID },
			SetID:      func(u *user.User, id int) { u.ID = id },
			Deactivate: func(u *user.User) { u.Active = false },
			Normalize:  (*user.User).Normalize,
			Unique: []UniqueField[user.User]{
				{Name: "login", Value: func(u user.User) string { return u.Login }},
			},
		}),
	}
}

// FindByLogin returns the account with exactly this login, active or not.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (user.User, error) {
	found, err := r.Filter(ctx, func(u user.User) bool { return u.Login == login }, 1)
	if err != nil {
		return user.User{}, err
	}
	if len(found) == 0 {
		return user.User{}, fmt.Errorf("%w: user %q", apperror.ErrNotFound, login)
	}
	return found[0], nil
}

func (r *UserRepository) LoginExists(ctx context.Context, login string) (bool, error) {
	n, err := r.Count(ctx, func(u user.User) bool { return u.Login == login })
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
