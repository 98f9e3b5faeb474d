package metered

import (
	"context"

	domain "user-service/internal/domain/user"
	"user-service/internal/observability"
	"user-service/internal/usecase/user"
)

// UserRepository records latency and errors of every call to the wrapped repository.
type UserRepository struct {
	repo user.Repository
	prom *observability.Prom
}

// NewUserRepository wraps repo.
func NewUserRepository(repo user.Repository, prom *observability.Prom) *UserRepository {
	return &UserRepository{repo: repo, prom: prom}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.prom.ObserveStore("create", func() error {
		return r.repo.Create(ctx, u)
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (u *domain.User, err error) {
	err = r.prom.ObserveStore("get_by_id", func() error {
		u, err = r.repo.GetByID(ctx, id)
		return err
	})
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (u *domain.User, err error) {
	err = r.prom.ObserveStore("get_by_email", func() error {
		u, err = r.repo.GetByEmail(ctx, email)
		return err
	})
	return u, err
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	return r.prom.ObserveStore("update", func() error {
		return r.repo.Update(ctx, u)
	})
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.prom.ObserveStore("delete", func() error {
		return r.repo.Delete(ctx, id)
	})
}

func (r *UserRepository) List(ctx context.Context) (users []domain.User, err error) {
	err = r.prom.ObserveStore("list", func() error {
		users, err = r.repo.List(ctx)
		return err
	})
	return users, err
}
