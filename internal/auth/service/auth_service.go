package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nalanda-library-system/backend/internal/audit"
	"nalanda-library-system/backend/internal/security"
	"nalanda-library-system/backend/internal/user/domain"
	userrepo "nalanda-library-system/backend/internal/user/repository"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email, deactivated account, and
	// wrong password alike; the caller learns nothing about which.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// UserRepo is the user persistence needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// AuthService registers users and exchanges credentials for session tokens.
type AuthService struct {
	users  UserRepo
	hasher *security.Hasher
	tokens *security.TokenCodec
	audit  audit.AuditLogger
}

// NewAuthService returns an AuthService. auditLogger may be nil.
func NewAuthService(users UserRepo, hasher *security.Hasher, tokens *security.TokenCodec, auditLogger audit.AuditLogger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, audit: auditLogger}
}

// Session is the result of a successful login or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates a user account. The role string is normalized through
// ParseRole, so anything other than "Admin" yields a Member account.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*Session, error) {
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.ParseRole(role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Two concurrent registrations of the same email race past the
		// lookup; the unique constraint decides.
		if errors.Is(err, userrepo.ErrDuplicate) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, u.ID, "register", "user:"+u.ID, `{"role":"`+string(u.Role)+`"}`)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Login verifies the credentials and issues a session token. Deactivated
// accounts fail the same way as wrong passwords.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		s.auditFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		s.auditFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, u.ID, "login", "user:"+u.ID, "")
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (s *AuthService) auditFailure(ctx context.Context, email string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, audit.AnonymousUserID, "login_failure", "email:"+email, "")
	}
}
