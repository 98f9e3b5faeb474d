package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	domain "user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
)

const entityName = "User"

// Repository defines the interface for user data access operations.
// It abstracts the storage layer so the in-memory store and the SQLite
// store can be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error                   // Insert a new user
	GetByID(ctx context.Context, id string) (*domain.User, error)       // EntityNotFoundError when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // nil, nil when absent
	Update(ctx context.Context, u *domain.User) error                   // EntityNotFoundError when absent
	Delete(ctx context.Context, id string) error                        // EntityNotFoundError when absent
	List(ctx context.Context) ([]domain.User, error)                    // All users in insertion order
}

// Usecase owns the user collection's business rules: email uniqueness,
// existence checks, timestamps and listing. Every operation runs under a
// single mutex so check-then-act sequences are atomic and effects are
// applied in call order.
type Usecase struct {
	mu     sync.Mutex
	repo   Repository
	log    *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

var _ UserUsecase = (*Usecase)(nil)

// Option customises a Usecase.
type Option func(*Usecase)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *Usecase) { uc.now = now }
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(gen func() string) Option {
	return func(uc *Usecase) { uc.newID = gen }
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger, opts ...Option) *Usecase {
	uc := &Usecase{
		repo:   r,
		log:    log,
		tracer: otel.Tracer("user-service/usecase/user"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// timestamp returns the current time truncated to the precision timestamps are rendered with.
func (uc *Usecase) timestamp() time.Time {
	return uc.now().UTC().Truncate(time.Millisecond)
}

// CreateUser creates a new user after checking email uniqueness.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (u *domain.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.CreateUser")
	defer func() { endSpan(span, err) }()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	existing, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, uc.internal("failed to validate email uniqueness", err)
	}
	if existing != nil {
		return nil, pkgerrors.NewDuplicateEntityError(entityName, "email")
	}

	role := in.Role
	if role == "" {
		role = domain.DefaultRole
	}

	now := uc.timestamp()
	created := domain.User{
		ID:        uc.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, &created); err != nil {
		return nil, uc.internal("failed to create user", err)
	}

	span.SetAttributes(attribute.String("user.id", created.ID))
	uc.log.Debug("user created", zap.String("id", created.ID))
	return &created, nil
}

// ListUsers returns one page of users, optionally filtered and sorted.
func (uc *Usecase) ListUsers(ctx context.Context, in ListUsersRequest) (resp *ListUsersResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.ListUsers")
	defer func() { endSpan(span, err) }()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, uc.internal("failed to list users", err)
	}

	users, pagination := domain.Paginate(domain.Filter(all, in.Query), domain.PageRequest{
		Page:    in.Page,
		PerPage: in.PerPage,
		Sort:    in.Sort,
		Order:   in.Order,
	})

	span.SetAttributes(
		attribute.Int("page", pagination.Page),
		attribute.Int("per_page", pagination.PerPage),
		attribute.Int("total", pagination.Total),
	)

	return &ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	}, nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, id string) (u *domain.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.GetUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer func() { endSpan(span, err) }()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	u, err = uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.repoError("failed to get user", err)
	}
	return u, nil
}

// UpdateUser merges the patch over an existing user. ID and CreatedAt never
// change and UpdatedAt never moves backwards.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (u *domain.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.UpdateUser", trace.WithAttributes(attribute.String("user.id", in.ID)))
	defer func() { endSpan(span, err) }()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	current, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, uc.repoError("failed to get user", err)
	}

	if in.Patch.Email != nil {
		existing, err := uc.repo.GetByEmail(ctx, *in.Patch.Email)
		if err != nil {
			return nil, uc.internal("failed to validate email uniqueness", err)
		}
		if existing != nil && existing.ID != in.ID {
			return nil, pkgerrors.NewDuplicateEntityError(entityName, "email")
		}
	}

	updated := *current
	in.Patch.Apply(&updated)

	updated.UpdatedAt = uc.timestamp()
	if updated.UpdatedAt.Before(current.UpdatedAt) {
		updated.UpdatedAt = current.UpdatedAt
	}

	if err := uc.repo.Update(ctx, &updated); err != nil {
		return nil, uc.repoError("failed to update user", err)
	}

	uc.log.Debug("user updated", zap.String("id", updated.ID))
	return &updated, nil
}

// DeleteUser removes a user. Success is the absence of an error.
func (uc *Usecase) DeleteUser(ctx context.Context, id string) (err error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.DeleteUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer func() { endSpan(span, err) }()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.repo.Delete(ctx, id); err != nil {
		return uc.repoError("failed to delete user", err)
	}

	uc.log.Debug("user deleted", zap.String("id", id))
	return nil
}

// repoError passes domain errors through and wraps everything else.
func (uc *Usecase) repoError(message string, err error) error {
	if errors.Is(err, pkgerrors.ErrNotFound) || errors.Is(err, pkgerrors.ErrDuplicate) {
		return err
	}
	return uc.internal(message, err)
}

func (uc *Usecase) internal(message string, err error) error {
	uc.log.Error(message, zap.Error(err))
	return pkgerrors.NewInternalError(message, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
