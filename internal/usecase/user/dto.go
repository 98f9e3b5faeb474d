package user

import domain "user-service/internal/domain/user"

// CreateUserRequest represents the input for creating a new user.
// Name and Email are expected to be syntactically valid already.
type CreateUserRequest struct {
	Name  string
	Email string
	Role  domain.Role // empty means domain.DefaultRole
}

// UpdateUserRequest represents a partial update of an existing user.
type UpdateUserRequest struct {
	ID    string
	Patch domain.Patch
}

// ListUsersRequest represents the request payload for listing users.
// It supports pagination, sorting and search.
type ListUsersRequest struct {
	Page    int
	PerPage int
	Sort    string
	Order   domain.SortOrder
	Query   string
}

// ListUsersResponse represents one page of users plus pagination metadata.
type ListUsersResponse struct {
	Users      []domain.User
	Pagination domain.Pagination
}
