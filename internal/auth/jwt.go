package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"
	"vault/internal/domain/services"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenIssuer signs session tokens with HS256 using a shared secret.
type JWTTokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

var _ services.TokenIssuer = (*JWTTokenIssuer)(nil)

// NewJWTTokenIssuer creates an issuer. The secret must be non-empty.
func NewJWTTokenIssuer(secret string, accessTTL, refreshTTL time.Duration, logger *slog.Logger) (*JWTTokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	return &JWTTokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		logger:     logger,
	}, nil
}

// WithClock replaces the time source, used by tests to exercise expiry
func (i *JWTTokenIssuer) WithClock(now func() time.Time) *JWTTokenIssuer {
	i.now = now
	return i
}

// Issue signs a token of the given kind for subject
func (i *JWTTokenIssuer) Issue(subject string, kind models.TokenKind, ttl time.Duration) (string, error) {
	issuedAt := i.now()
	claims := &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Type: kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// IssuePair issues an access and a refresh token for subject
func (i *JWTTokenIssuer) IssuePair(subject string) (*models.TokenPair, error) {
	access, err := i.Issue(subject, models.TokenKindAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.Issue(subject, models.TokenKindRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

// Verify validates signature, expiry and kind. Any failure is domain.ErrUnauthorized.
func (i *JWTTokenIssuer) Verify(tokenString string, expected models.TokenKind) (*models.TokenPayload, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		// Prevent algorithm confusion attacks
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		i.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		i.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	if claims.Type != expected {
		i.logger.Debug("token has unexpected type", "type", claims.Type, "expected", expected)
		return nil, domain.ErrUnauthorized
	}

	return &models.TokenPayload{
		Subject:   claims.GetUserID(),
		ExpiresAt: claims.ExpiresAt.Time,
		Kind:      claims.Type,
	}, nil
}
