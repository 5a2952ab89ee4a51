package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmailAddress string     `gorm:"size:256;uniqueIndex;not null"`
	PasswordHash []byte     `gorm:"not null"`
	CreatedAt    time.Time  `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false"`
}

// NewUser assigns the ID and creation timestamp. UpdatedAt stays nil until
// the first mutation.
func NewUser(emailAddress string, passwordHash []byte) *User {
	return &User{
		ID:           uuid.New(),
		EmailAddress: NormalizeEmail(emailAddress),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// NormalizeEmail lower-cases and trims an email address so uniqueness is
// case-insensitive.
func NormalizeEmail(emailAddress string) string {
	return strings.ToLower(strings.TrimSpace(emailAddress))
}
