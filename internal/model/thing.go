package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Thing struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name      string     `gorm:"size:32;not null;index"`
	Colour    string     `gorm:"not null;index"`
	CreatedAt time.Time  `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`

	Owner User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// NewThing assigns the ID, creation timestamp and owner, and normalizes the
// display fields.
func NewThing(userID uuid.UUID, name, colour string) *Thing {
	return &Thing{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      NormalizeThingName(name),
		Colour:    strings.TrimSpace(colour),
		CreatedAt: time.Now().UTC(),
	}
}

// NormalizeThingName trims surrounding whitespace and title-cases the name.
func NormalizeThingName(name string) string {
	return cases.Title(language.English).String(strings.TrimSpace(name))
}
