package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"typier/internal/models"
	"typier/internal/repository"
	"typier/internal/security"
	"typier/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLoginRequired      = errors.New("login required")
)

// AuthService handles registration, login and login-session validation.
// Browser clients carry a cookie backed by a stored session; API clients
// may instead present a signed token.
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new password-based account
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and creates a login session
func (s *AuthService) Login(email, password string) (*models.AuthSession, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createLoginSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// OAuthLogin signs in a user backed by an external identity, creating the
// account on first login
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.AuthSession, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up oauth user: %w", err)
	}

	if user == nil {
		existing, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			// The email belongs to a password or other-provider account.
			return nil, nil, ErrEmailTaken
		}

		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		user, err = s.userRepo.CreateOAuthUser(email, name, provider, subject)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
		}
	}

	session, err := s.createLoginSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) createLoginSession(userID int64) (*models.AuthSession, error) {
	now := time.Now()
	session := &models.AuthSession{
		ID:        security.NewID(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}
	if err := s.userRepo.CreateAuthSession(session); err != nil {
		return nil, fmt.Errorf("failed to create login session: %w", err)
	}
	return session, nil
}

// ValidateSession checks a login session and returns its user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetAuthSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get login session: %w", err)
	}
	if session == nil {
		return nil, ErrLoginRequired
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.userRepo.DeleteAuthSession(sessionID)
		return nil, ErrLoginRequired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrLoginRequired
	}
	return user, nil
}

// Logout invalidates a login session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteAuthSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// IssueAPIToken creates a signed access token for a logged-in user
func (s *AuthService) IssueAPIToken(userID int64) (string, error) {
	return s.tokens.Issue(userID, time.Now())
}

// ValidateAPIToken checks a bearer token and returns its user
func (s *AuthService) ValidateAPIToken(token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrLoginRequired
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrLoginRequired
	}
	return user, nil
}

// ListUsers returns all accounts, newest first. Admin only.
func (s *AuthService) ListUsers() ([]models.User, error) {
	return s.userRepo.ListUsers()
}

// CleanupExpiredSessions removes login sessions past their expiry
func (s *AuthService) CleanupExpiredSessions() error {
	if _, err := s.userRepo.DeleteExpiredAuthSessions(); err != nil {
		return fmt.Errorf("failed to cleanup login sessions: %w", err)
	}
	return nil
}
