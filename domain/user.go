package domain

import (
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"
)

// ValidationError is a user correctable input error with a specific message
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// User holds information about a registered user.
// The lookup key is the lowercased login while Login keeps the original case for display.
type User struct {
	Login      string    `json:"login"`
	Hash       string    `json:"hash"`
	Email      string    `json:"email"`
	LastLogin  time.Time `json:"lastLogin"`
	LastUpload int64     `json:"lastUpload,omitempty"`
}

// Key returns the canonical lookup key for the user
func (u *User) Key() string {
	return strings.ToLower(u.Login)
}

// GetHashFromPassword returns the hash based on bcrypt
func GetHashFromPassword(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return base64.StdEncoding.EncodeToString(hash)
}

// SetPassword sets the password on the user with bcrypt
func (u *User) SetPassword(password string) {
	u.Hash = GetHashFromPassword(password)
}

// CheckPassword verifies the given plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	hash, err := base64.StdEncoding.DecodeString(u.Hash)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// ValidateLogin checks the login charset and length (3-20 chars of a-z, A-Z, 0-9, _, -)
func ValidateLogin(login string) error {
	if strings.TrimSpace(login) == "" {
		return ValidationError("Login cannot be empty")
	}
	if !loginPattern.MatchString(login) {
		return ValidationError("Login has invalid characters or wrong length (3-20 chars: a-z, A-Z, 0-9, _, -)")
	}
	return nil
}

// ValidateEmail checks for a non-empty, well-formed email address
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ValidationError("Email cannot be empty")
	}
	if !govalidator.IsEmail(email) {
		return ValidationError("Invalid email format")
	}
	return nil
}

// ValidatePassword enforces the minimal password length
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ValidationError("Password must be at least 6 characters")
	}
	return nil
}

// UserFilterFields is the list of fields we should filter when sending to clients
var UserFilterFields = []string{"hash"}
