package domain

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/VaughnVernon/SchemaMinder-sub003/internal/core/errors"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFullNameLength = 255
	MaxEmailLength    = 255
)

// User is a registry editor. Authentication exists only to identify the actor
// behind a session; authorization of individual changes is out of scope.
type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser creates a user with a bcrypt-hashed password.
func NewUser(fullName, email, password string, tenantID uuid.UUID) (*User, error) {
	if fullName == "" || len(fullName) > MaxFullNameLength {
		return nil, apperrors.ErrFullNameRequired
	}
	if email == "" || len(email) > MaxEmailLength {
		return nil, apperrors.ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.ErrEmailInvalid
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return nil, apperrors.ErrPasswordTooWeak
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
