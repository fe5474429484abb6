package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes short-lived access tokens from long-lived refresh tokens
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenTypeBearer is reported to clients alongside every token pair
const TokenTypeBearer = "bearer"

// TokenClaims is the signed payload of a session token.
type TokenClaims struct {
	jwt.RegisteredClaims           // sub, exp, iat
	Type                 TokenKind `json:"type"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *TokenClaims) GetUserID() string {
	return c.Subject
}

// TokenPayload is the verified content of a token
type TokenPayload struct {
	Subject   string
	ExpiresAt time.Time
	Kind      TokenKind
}

// TokenPair is issued on register, login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
