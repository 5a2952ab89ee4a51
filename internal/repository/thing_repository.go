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

// ThingQuery carries the list filters and sort field for things.
type ThingQuery struct {
	NameContains string
	Colour       string
	SortBy       string
}

var thingSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"colour":     "colour",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type ThingRepository struct {
	db *gorm.DB
}

type ThingRepositoryInterface interface {
	Create(ctx context.Context, thing *model.Thing) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Thing, error)
	List(ctx context.Context, q ThingQuery) ([]model.Thing, error)
	Update(ctx context.Context, thing *model.Thing) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ ThingRepositoryInterface = (*ThingRepository)(nil)

func NewThingRepository(db *gorm.DB) *ThingRepository {
	return &ThingRepository{db: db}
}

// Create persists a new thing. The owner must exist; the foreign key
// rejects creation against an unknown user.
func (r *ThingRepository) Create(ctx context.Context, thing *model.Thing) error {
	return r.db.WithContext(ctx).Create(thing).Error
}

// GetByID retrieves a thing by its ID.
func (r *ThingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Thing, error) {
	var thing model.Thing
	err := r.db.WithContext(ctx).First(&thing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &thing, nil
}

// List retrieves things matching the query, ascending, tie-broken by name
// when sorting on another field.
func (r *ThingRepository) List(ctx context.Context, q ThingQuery) ([]model.Thing, error) {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	column, ok := thingSortColumns[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, q.SortBy)
	}

	tx := r.db.WithContext(ctx)
	if q.NameContains != "" {
		tx = tx.Where("name ILIKE ?", "%"+q.NameContains+"%")
	}
	if q.Colour != "" {
		tx = tx.Where("colour = ?", q.Colour)
	}
	if column != "name" {
		tx = tx.Order(column + " ASC").Order("name ASC")
	} else {
		tx = tx.Order("name ASC")
	}

	var things []model.Thing
	if err := tx.Find(&things).Error; err != nil {
		return nil, err
	}
	return things, nil
}

// Update replaces the thing's mutable fields and stamps UpdatedAt.
func (r *ThingRepository) Update(ctx context.Context, thing *model.Thing) error {
	now := time.Now().UTC()
	thing.UpdatedAt = &now

	result := r.db.WithContext(ctx).Save(thing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrThingNotFound
	}
	return nil
}

// Delete removes a thing by its ID.
func (r *ThingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Thing{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrThingNotFound
	}
	return nil
}
