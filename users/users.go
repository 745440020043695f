package users

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type ProviderType string

const (
	ProviderLocal  ProviderType = "local"
	ProviderGoogle ProviderType = "google"
)

// PasswordCost is the bcrypt work factor for stored password hashes.
const PasswordCost = 10

const MinPasswordLength = 6

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

var emailPattern = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[a-zA-Z]{2,7}$`)

type User struct {
	ID           string       `json:"_id" bson:"_id,omitempty"`
	Email        string       `json:"email,omitempty" bson:"email,omitempty"`
	Name         string       `json:"name" bson:"name"`
	PasswordHash string       `json:"-" bson:"password,omitempty"` // never serialize
	GoogleID     string       `json:"googleId,omitempty" bson:"googleId,omitempty"`
	Avatar       string       `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Provider     ProviderType `json:"provider,omitempty" bson:"provider,omitempty"`

	ResetTokenHash    string     `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetTokenExpires *time.Time `json:"-" bson:"resetPasswordExpires,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the record invariants enforced on every insert.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if u.Email == "" && u.GoogleID == "" {
		return errors.New("email or google id is required")
	}
	if u.Email != "" {
		if err := ValidateEmail(u.Email); err != nil {
			return err
		}
	}
	if u.GoogleID == "" && u.PasswordHash == "" {
		return errors.New("password is required")
	}
	if (u.ResetTokenHash == "") != (u.ResetTokenExpires == nil) {
		return errors.New("reset token hash and expiry must be set together")
	}
	return nil
}

func (u *User) HasPendingReset() bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpires != nil
}

// Sanitized returns a copy without any credential material.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	c.ResetTokenHash = ""
	c.ResetTokenExpires = nil
	return &c
}

func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return CheckPasswordHash(password, u.PasswordHash)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("please enter a valid email")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
