package handler

import (
	domain "user-service/internal/domain/user"
)

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin user guest"`
}

// UpdateUserRequest represents the HTTP request body for a partial update.
// Absent fields are left untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
	Role  *string `json:"role" binding:"omitempty,oneof=admin user guest"`
}

// ListUsersQuery holds the query parameters of GET /users.
type ListUsersQuery struct {
	Page    *int   `form:"page" binding:"omitempty,min=1"`
	PerPage *int   `form:"perPage" binding:"omitempty,min=1,max=100"`
	Sort    string `form:"sort"`
	Order   string `form:"order" binding:"omitempty,oneof=asc desc"`
	Q       string `form:"q"`
}

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// PaginationMeta is the meta block of a paginated response.
type PaginationMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: domain.FormatTimestamp(u.CreatedAt),
		UpdatedAt: domain.FormatTimestamp(u.UpdatedAt),
	}
}

func toPaginationMeta(p domain.Pagination) PaginationMeta {
	return PaginationMeta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

func (r UpdateUserRequest) patch() domain.Patch {
	p := domain.Patch{Name: r.Name, Email: r.Email}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
