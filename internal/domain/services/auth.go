package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"vault/internal/config"
	"vault/internal/domain/models"
	"vault/internal/domain/models/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// CredentialStore hashes and verifies passwords
type CredentialStore interface {
	// Hash produces a self-contained hash embedding salt and cost
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hash.
	// Returns false, never an error, for malformed or foreign hashes.
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	// Issue signs a token for subject that expires after ttl
	Issue(subject string, kind models.TokenKind, ttl time.Duration) (string, error)

	// Verify checks signature, expiry and kind.
	// Every failure returns domain.ErrUnauthorized with no further detail.
	Verify(token string, expected models.TokenKind) (*models.TokenPayload, error)

	// IssuePair issues an access and a refresh token for the same subject
	IssuePair(subject string) (*models.TokenPair, error)
}

// AuthService orchestrates registration, login and session refresh
type AuthService interface {
	// Register creates a user and returns it with a fresh token pair
	Register(ctx context.Context, req *RegisterRequest) (*models.User, *models.TokenPair, error)

	// Login verifies credentials. Every failure is the same ErrUnauthorized.
	Login(ctx context.Context, req *LoginRequest) (*models.User, *models.TokenPair, error)

	// RefreshTokens exchanges a refresh token for a new pair
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)

	// Authenticate resolves an access token to an active user
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)

	// UpdateProfile changes username and/or settings
	UpdateProfile(ctx context.Context, user *models.User, req *UpdateProfileRequest) (*models.User, error)

	// ChangePassword replaces the password after verifying the current one
	ChangePassword(ctx context.Context, user *models.User, req *ChangePasswordRequest) error
}

// ResourceAuthorizer checks that a user owns the resource they address.
// A missing resource is ErrNotFound, a foreign one is ErrForbidden.
type ResourceAuthorizer interface {
	// CanAccessDocument returns the document when userID owns it
	CanAccessDocument(ctx context.Context, userID, documentID string) (*docsystem.Document, error)

	// CanAccessTag returns the tag when userID owns it
	CanAccessTag(ctx context.Context, userID, tagID string) (*docsystem.Tag, error)
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Normalize trims the email and lowercases email and username
func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Username = NormalizeUsername(r.Username)
}

// Validate checks the request shape
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		usernameField(&r.Username, true),
		passwordField(&r.Password),
	)
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the request shape
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest carries a refresh token in the body; the boundary may also read it from a cookie
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest supports partial updates via pointers - only provided fields are updated
type UpdateProfileRequest struct {
	Username *string        `json:"username,omitempty"`
	Settings models.JSONMap `json:"settings,omitempty"`
}

// Normalize lowercases the username if provided
func (r *UpdateProfileRequest) Normalize() {
	if r.Username != nil {
		username := NormalizeUsername(*r.Username)
		r.Username = &username
	}
}

// Validate checks the request shape
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.NilOrNotEmpty,
			validation.Length(config.MinUsernameLength, config.MaxUsernameLength),
			validation.Match(usernamePattern).Error("may only contain letters, numbers, underscores and hyphens"),
		),
	)
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate checks the request shape
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		passwordField(&r.NewPassword),
	)
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and lowercases a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func usernameField(username *string, required bool) *validation.FieldRules {
	rules := []validation.Rule{
		validation.Length(config.MinUsernameLength, config.MaxUsernameLength),
		validation.Match(usernamePattern).Error("may only contain letters, numbers, underscores and hyphens"),
	}
	if required {
		rules = append([]validation.Rule{validation.Required}, rules...)
	}
	return validation.Field(username, rules...)
}

func passwordField(password *string) *validation.FieldRules {
	return validation.Field(password,
		validation.Required,
		validation.RuneLength(config.MinPasswordLength, config.MaxPasswordLength),
		validation.By(passwordStrength),
	)
}

// passwordStrength requires at least one uppercase letter, one lowercase letter and one digit
func passwordStrength(value interface{}) error {
	password, _ := value.(string)
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return errors.New("must contain at least one uppercase letter")
	case !hasLower:
		return errors.New("must contain at least one lowercase letter")
	case !hasDigit:
		return errors.New("must contain at least one digit")
	}
	return nil
}
