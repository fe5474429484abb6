package auth

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T) *JWTTokenIssuer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer, err := NewJWTTokenIssuer(testSecret, 15*time.Minute, 7*24*time.Hour, logger)
	require.NoError(t, err)
	return issuer
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	store := NewBcryptCredentialStore(bcrypt.MinCost)

	hash, err := store.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, store.Verify("Secret123", hash))
	assert.False(t, store.Verify("secret123", hash))
}

func TestCredentialStoreSaltsEachHash(t *testing.T) {
	store := NewBcryptCredentialStore(bcrypt.MinCost)

	first, err := store.Hash("Secret123")
	require.NoError(t, err)
	second, err := store.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, store.Verify("Secret123", first))
	assert.True(t, store.Verify("Secret123", second))
}

func TestCredentialStoreLongPasswords(t *testing.T) {
	store := NewBcryptCredentialStore(bcrypt.MinCost)

	// Two passwords sharing the first 72 bytes must still be distinguished
	base := strings.Repeat("é", 40)
	hash, err := store.Hash(base + "A1")
	require.NoError(t, err)

	assert.True(t, store.Verify(base+"A1", hash))
	assert.False(t, store.Verify(base+"B2", hash))
}

func TestCredentialStoreMalformedHash(t *testing.T) {
	store := NewBcryptCredentialStore(bcrypt.MinCost)

	assert.False(t, store.Verify("Secret123", ""))
	assert.False(t, store.Verify("Secret123", "not-a-bcrypt-hash"))
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.Issue("user-1", models.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	payload, err := issuer.Verify(token, models.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.Subject)
	assert.Equal(t, models.TokenKindAccess, payload.Kind)
}

func TestIssuePair(t *testing.T) {
	issuer := newTestIssuer(t)

	pair, err := issuer.IssuePair("user-1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	access, err := issuer.Verify(pair.AccessToken, models.TokenKindAccess)
	require.NoError(t, err)
	refresh, err := issuer.Verify(pair.RefreshToken, models.TokenKindRefresh)
	require.NoError(t, err)

	assert.Equal(t, "user-1", access.Subject)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.IssuePair("user-1")
	require.NoError(t, err)

	_, err = issuer.Verify(pair.RefreshToken, models.TokenKindAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = issuer.Verify(pair.AccessToken, models.TokenKindRefresh)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := newTestIssuer(t)
	start := time.Now()
	issuer.WithClock(func() time.Time { return start })

	token, err := issuer.Issue("user-1", models.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	issuer.WithClock(func() time.Time { return start.Add(2 * time.Minute) })
	_, err = issuer.Verify(token, models.TokenKindAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Zero and negative lifetimes are expired as soon as they are issued
	issuer.WithClock(func() time.Time { return start })
	for _, ttl := range []time.Duration{0, -time.Minute} {
		token, err := issuer.Issue("user-1", models.TokenKindRefresh, ttl)
		require.NoError(t, err)
		_, err = issuer.Verify(token, models.TokenKindRefresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, "ttl %s", ttl)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer(t)
	other, err := NewJWTTokenIssuer("ffffffffffffffffffffffffffffffff", time.Minute, time.Hour, issuer.logger)
	require.NoError(t, err)

	token, err := other.Issue("user-1", models.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	_, err = issuer.Verify(token, models.TokenKindAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyRejectsTampering(t *testing.T) {
	issuer := newTestIssuer(t)
	token, err := issuer.Issue("user-1", models.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":         "not.a.token",
		"empty":           "",
		"truncated":       token[:len(token)-4],
		"swapped payload": swapPayload(t, token),
	}
	for name, candidate := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(candidate, models.TokenKindAccess)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	issuer := newTestIssuer(t)
	claims := &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Type: models.TokenKindAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(token, models.TokenKindAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// swapPayload replaces the payload segment of token with one naming another subject
func swapPayload(t *testing.T, token string) string {
	t.Helper()
	issuer := newTestIssuer(t)
	other, err := issuer.Issue("user-2", models.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	parts[1] = otherParts[1]
	return strings.Join(parts, ".")
}
