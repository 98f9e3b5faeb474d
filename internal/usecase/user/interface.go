package user

import (
	"context"

	domain "user-service/internal/domain/user"
)

// UserUsecase defines the interface for user business logic operations.
type UserUsecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
