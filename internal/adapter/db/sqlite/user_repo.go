package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
)

const entityName = "User"

// UserRepo implements the usecase Repository on top of GORM and SQLite.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement"` // Insertion order
	ID        string    `gorm:"not null;uniqueIndex"`     // Public UUID
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null;uniqueIndex"`
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func toDomain(m UserSchema) *domain.User {
	return &domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      domain.Role(m.Role),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// Create inserts a new user into the database.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user id: %w", err)
	}
	if count > 0 {
		return pkgerrors.NewDuplicateEntityError(entityName, "id")
	}

	model := UserSchema{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("id", u.ID))
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Debug("user created in db", zap.String("id", u.ID), zap.Int64("seq", model.Seq))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewEntityNotFoundError(entityName, id)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomain(model), nil
}

// GetByEmail retrieves a user from the database by their email address.
// It returns nil, nil when no user has that email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return toDomain(model), nil
}

// Update overwrites the mutable columns of an existing user.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":       u.Name,
		"email":      u.Email,
		"role":       string(u.Role),
		"updated_at": u.UpdatedAt,
	})
	if res.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.String("id", u.ID))
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewEntityNotFoundError(entityName, u.ID)
	}

	r.log.Debug("user updated in db", zap.String("id", u.ID))
	return nil
}

// Delete removes a user from the database by ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewEntityNotFoundError(entityName, id)
	}

	r.log.Debug("user deleted in db", zap.String("id", id))
	return nil
}

// List retrieves every user in insertion order.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, len(models))
	for i, model := range models {
		users[i] = *toDomain(model)
	}

	return users, nil
}
