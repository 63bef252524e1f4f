package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/config"
	"github.com/thewell/content-studio/internal/db"
	"github.com/thewell/content-studio/internal/types"
)

// UserService provides business logic for passwordless sign-in and profiles.
type UserService struct {
	users  UserStore
	codes  LoginCodeStore
	config *config.LoginCodeConfig
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService with the given dependencies.
func NewUserService(users UserStore, codes LoginCodeStore, cfg *config.LoginCodeConfig, mailer Mailer, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}
	return &UserService{
		users:  users,
		codes:  codes,
		config: cfg,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// convertDBUserToTypesUser converts db.User to the API representation.
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:        dbUser.ID,
		Name:      dbUser.Name,
		Email:     dbUser.Email,
		CreatedAt: dbUser.CreatedAt,
		UpdatedAt: dbUser.UpdatedAt,
	}
}

// RequestCode issues a new login code for email and hands it to the mailer.
// It succeeds whether or not the address belongs to an existing user.
func (s *UserService) RequestCode(ctx context.Context, email string) error {
	email = db.NormalizeEmail(email)

	code, err := s.config.GenerateCode()
	if err != nil {
		return err
	}
	hash, err := s.config.HashCode(code)
	if err != nil {
		return err
	}

	expiresAt := s.config.ExpiresAt(s.now())
	if _, err := s.codes.CreateLoginCode(ctx, email, hash, expiresAt); err != nil {
		return fmt.Errorf("failed to store login code: %w", err)
	}
	if err := s.mailer.SendLoginCode(ctx, email, code, expiresAt); err != nil {
		return fmt.Errorf("failed to deliver login code: %w", err)
	}
	return nil
}

// VerifyCode checks a login code against the newest active code for email.
// On success the code is consumed and the user is found or created.
func (s *UserService) VerifyCode(ctx context.Context, email, code string) (*types.User, error) {
	email = db.NormalizeEmail(email)
	now := s.now()

	active, err := s.codes.GetActiveLoginCode(ctx, email, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load login code: %w", err)
	}
	if active == nil {
		return nil, &ErrInvalidCode{}
	}
	if active.Attempts >= s.config.MaxAttempts {
		return nil, &ErrTooManyAttempts{Email: email}
	}

	if !s.config.VerifyCode(code, active.CodeHash) {
		attempts, err := s.codes.IncrementLoginCodeAttempts(ctx, active.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to record login attempt: %w", err)
		}
		s.logger.Warn("login code mismatch", zap.String("email", email), zap.Int("attempts", attempts))
		if attempts >= s.config.MaxAttempts {
			return nil, &ErrTooManyAttempts{Email: email}
		}
		return nil, &ErrInvalidCode{}
	}

	consumed, err := s.codes.ConsumeLoginCode(ctx, active.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to consume login code: %w", err)
	}
	if !consumed {
		return nil, &ErrInvalidCode{}
	}

	user, err := s.users.FindOrCreateUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return convertDBUserToTypesUser(user), nil
}

// GetUser returns a user profile.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return convertDBUserToTypesUser(user), nil
}

// UpdateName sets a user's display name and returns the updated profile.
func (s *UserService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*types.User, error) {
	if err := s.users.UpdateUserName(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUser(ctx, userID)
}

// DeleteUser removes a user and everything they own.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
