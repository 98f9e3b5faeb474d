package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-service/internal/adapter/gin/response"
	domain "user-service/internal/domain/user"
	"user-service/internal/usecase/user"
	pkgerrors "user-service/pkg/errors"
	"user-service/pkg/logger"
	"user-service/pkg/security"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	ConfigureBinding()
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// Register mounts the user routes on rg.
func (h *UserHandler) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, h.log, err)
		return
	}

	u, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("user created", zap.String("id", u.ID))
	response.OK(c, http.StatusCreated, toUserResponse(*u))
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := bindQuery(c, &q); err != nil {
		response.FromError(c, h.log, err)
		return
	}

	search, err := security.ValidateSearchQuery("q", q.Q)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Page:    derefInt(q.Page),
		PerPage: derefInt(q.PerPage),
		Sort:    q.Sort,
		Order:   domain.SortOrder(q.Order),
		Query:   search,
	})
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	response.Paginated(c, users, toPaginationMeta(resp.Pagination))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}

	response.OK(c, http.StatusOK, toUserResponse(*u))
}

// UpdateUser handles PUT and PATCH /users/:id. Both are partial updates.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, h.log, err)
		return
	}

	u, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    id,
		Patch: req.patch(),
	})
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("user updated", zap.String("id", u.ID))
	response.OK(c, http.StatusOK, toUserResponse(*u))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		response.FromError(c, h.log, err)
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("user deleted", zap.String("id", id))
	c.Status(http.StatusNoContent)
}

// pathID returns the :id parameter when it is a canonical UUID of version 1 to 5.
// Otherwise it writes a 400 response.
func (h *UserHandler) pathID(c *gin.Context) (string, bool) {
	raw := c.Param("id")
	if !isUUID(raw) {
		response.FromError(c, h.log, pkgerrors.NewValidationError("id", fmt.Sprintf("'%s' is not a valid UUID", raw)))
		return "", false
	}
	return raw, true
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() >= 1 && id.Version() <= 5 && id.Variant() == uuid.RFC4122
}
