package service

import (
	"book_platform_backend/internal/config"
	"book_platform_backend/internal/model"
	"book_platform_backend/internal/repository"
	"book_platform_backend/internal/util"
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo    *repository.UserRepository
	SessionRepo *repository.SessionRepository
	Cfg         *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessionRepo *repository.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Cfg:         cfg,
	}
}

// Register creates a new account. Username and email must both be unused;
// the comparison is a case-sensitive exact match. The plaintext password is
// hashed immediately and never stored.
func (s *AuthService) Register(user *model.User, password string) error {
	if _, err := s.UserRepo.FindByUsername(user.Username); err == nil {
		return util.ErrUsernameRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	if _, err := s.UserRepo.FindByEmail(user.Email); err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	return s.UserRepo.Create(user)
}

// Login verifies the credentials and opens a session. The remember flag
// extends the session lifetime; otherwise the configured default applies.
// Deactivated accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, username, password string, remember bool) (string, *model.User, error) {
	user, err := s.UserRepo.FindByUsername(username)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	// Any hashing error counts as a failed match.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, util.ErrAccountDisabled
	}

	lifetime := s.Cfg.Session.Lifetime
	if remember {
		lifetime = s.Cfg.Session.RememberLifetime
	}

	token, err := s.SessionRepo.Create(ctx, user.ID, lifetime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout invalidates the token immediately.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.SessionRepo.Delete(ctx, token)
}

// ResolveToken maps a session token to a full identity snapshot with roles
// and permissions preloaded. It is read-only and fails closed: an unknown
// token, a missing user, or a deactivated account all resolve to anonymous.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.SessionRepo.GetUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.FindByIDWithRoles(userID)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if !user.IsActive {
		return nil, util.ErrAccountDisabled
	}
	return user, nil
}

// UpdateProfile changes the name fields and, when the email changes,
// re-checks uniqueness against everyone else.
func (s *AuthService) UpdateProfile(userID uint, firstName, lastName, email string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if email != "" && email != user.Email {
		existing, err := s.UserRepo.FindByEmail(email)
		if err == nil && existing.ID != user.ID {
			return nil, util.ErrEmailRegistered
		} else if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		user.Email = email
	}

	user.FirstName = firstName
	user.LastName = lastName

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword requires the correct current password before rehashing.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return util.ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.UserRepo.UpdatePassword(userID, string(hashedPassword))
}
