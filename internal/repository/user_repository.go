package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thingapi/internal/model"
)

// UserQuery carries the list filters and sort field for users.
type UserQuery struct {
	EmailContains string
	SortBy        string
}

// Allowed sort fields for user lists. Anything else is rejected before the
// query is built, never passed through to SQL.
var userSortColumns = map[string]string{
	"id":            "id",
	"email_address": "email_address",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

type UserRepository struct {
	db *gorm.DB
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, emailAddress string) (*model.User, error)
	List(ctx context.Context, q UserQuery) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user. A duplicate email address maps to
// ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves a user by normalized email address. A missing user
// is (nil, nil), not an error.
func (r *UserRepository) FindByEmail(ctx context.Context, emailAddress string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email_address = ?", model.NormalizeEmail(emailAddress)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users matching the query, ascending, tie-broken by email
// address when sorting on another field.
func (r *UserRepository) List(ctx context.Context, q UserQuery) ([]model.User, error) {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "email_address"
	}
	column, ok := userSortColumns[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, q.SortBy)
	}

	tx := r.db.WithContext(ctx)
	if q.EmailContains != "" {
		tx = tx.Where("email_address ILIKE ?", "%"+q.EmailContains+"%")
	}
	if column != "email_address" {
		tx = tx.Order(column + " ASC").Order("email_address ASC")
	} else {
		tx = tx.Order("email_address ASC")
	}

	var users []model.User
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update replaces the user's mutable fields and stamps UpdatedAt.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.UpdatedAt = &now

	result := r.db.WithContext(ctx).Save(user)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user by ID. The database cascades the delete to the
// user's things.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
