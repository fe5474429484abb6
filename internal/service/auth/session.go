package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"
	"vault/internal/domain/repositories"
	"vault/internal/domain/services"
)

var (
	// errInvalidCredentials is returned for every login failure so responses never
	// reveal whether the email exists
	errInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)

	// errInvalidToken is returned for every refresh or authentication failure
	errInvalidToken = fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
)

// SessionService implements services.AuthService
type SessionService struct {
	users       repositories.UserRepository
	credentials services.CredentialStore
	tokens      services.TokenIssuer
	logger      *slog.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

var _ services.AuthService = (*SessionService)(nil)

// NewSessionService creates the auth session service
func NewSessionService(
	users repositories.UserRepository,
	credentials services.CredentialStore,
	tokens services.TokenIssuer,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		users:       users,
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with default settings and issues a token pair
func (s *SessionService) Register(ctx context.Context, req *services.RegisterRequest) (*models.User, *models.TokenPair, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, domain.NewValidationError(err)
	}

	// Both checked before any write; the unique constraints still catch races
	emailTaken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return nil, nil, &domain.ConflictError{Message: "email already registered", ResourceType: "user", Field: "email"}
	}

	usernameTaken, err := s.users.ExistsByUsername(ctx, req.Username, "")
	if err != nil {
		return nil, nil, fmt.Errorf("check username: %w", err)
	}
	if usernameTaken {
		return nil, nil, &domain.ConflictError{Message: "username already taken", ResourceType: "user", Field: "username"}
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Base:         models.NewBase(s.now()),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		IsActive:     true,
		Settings:     models.DefaultSettings(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
// Unknown email, wrong password and inactive account all return errInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, req *services.LoginRequest) (*models.User, *models.TokenPair, error) {
	req.Email = services.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, nil, domain.NewValidationError(err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("load user: %w", err)
		}
		// Spend the same bcrypt time as a real comparison
		s.credentials.Verify(req.Password, s.timingHash())
		s.logger.Warn("login failed", "reason", "unknown_email")
		return nil, nil, errInvalidCredentials
	}

	if !s.credentials.Verify(req.Password, user.PasswordHash) {
		s.logger.Warn("login failed", "reason", "wrong_password", "user_id", user.ID)
		return nil, nil, errInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("login failed", "reason", "inactive", "user_id", user.ID)
		return nil, nil, errInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair.
// The presented token is not revoked.
func (s *SessionService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	payload, err := s.tokens.Verify(refreshToken, models.TokenKindRefresh)
	if err != nil {
		return nil, errInvalidToken
	}

	if _, err := s.activeUser(ctx, payload.Subject); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(payload.Subject)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("tokens refreshed", "user_id", payload.Subject)
	return pair, nil
}

// Authenticate resolves an access token to its active user
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	payload, err := s.tokens.Verify(accessToken, models.TokenKindAccess)
	if err != nil {
		return nil, errInvalidToken
	}
	return s.activeUser(ctx, payload.Subject)
}

// UpdateProfile applies a new username and/or settings
func (s *SessionService) UpdateProfile(ctx context.Context, user *models.User, req *services.UpdateProfileRequest) (*models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err)
	}

	updated := *user
	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.users.ExistsByUsername(ctx, *req.Username, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, &domain.ConflictError{Message: "username already taken", ResourceType: "user", Field: "username"}
		}
		updated.Username = *req.Username
	}

	if req.Settings != nil {
		updated.Settings = req.Settings
	}

	updated.Touch(s.now())
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", user.ID)
	return &updated, nil
}

// ChangePassword re-hashes the password after verifying the current one.
// Issued tokens stay valid.
func (s *SessionService) ChangePassword(ctx context.Context, user *models.User, req *services.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return domain.NewValidationError(err)
	}

	if !s.credentials.Verify(req.OldPassword, user.PasswordHash) {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrBadRequest)
	}

	hash, err := s.credentials.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	updated := *user
	updated.PasswordHash = hash
	updated.Touch(s.now())
	if err := s.users.Update(ctx, &updated); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

// activeUser loads a token subject, collapsing missing and inactive users into errInvalidToken
func (s *SessionService) activeUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, errInvalidToken
	}
	return user, nil
}

// timingHash is a throwaway hash compared against when the email is unknown
func (s *SessionService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.credentials.Hash("timing-equalizer")
	})
	return s.dummyHash
}
