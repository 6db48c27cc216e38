package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/amcprep/internal/store"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrEmptyUsername and ErrEmptyPassword reject blank form fields.
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")

	// ErrInviteRequired is returned by Register when invitations are
	// enforced and no code was given.
	ErrInviteRequired = errors.New("an invitation code is required")
)

// inviteAlphabet omits 0, 1, I and O.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// InviteCodeLength is the length of generated invitation codes.
const InviteCodeLength = 8

// Config controls registration policy.
type Config struct {
	// RequireInvite makes Register demand a valid, unused invitation code.
	RequireInvite bool
}

// DefaultConfig requires invitations.
func DefaultConfig() Config {
	return Config{RequireInvite: true}
}

// Service implements account registration and login.
type Service struct {
	users   store.UserRepo
	invites store.InviteRepo
	cfg     Config
	log     logrus.FieldLogger
}

// NewService creates an account service.
func NewService(users store.UserRepo, invites store.InviteRepo, cfg Config, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{users: users, invites: invites, cfg: cfg, log: log}
}

// RequiresInvite reports whether Register demands an invitation code.
func (s *Service) RequiresInvite() bool {
	return s.cfg.RequireInvite
}

// Register creates an account. With invitations enforced, the code is
// consumed in the same transaction that creates the user.
func (s *Service) Register(ctx context.Context, username, password, inviteCode string) error {
	username = strings.TrimSpace(username)
	inviteCode = strings.ToUpper(strings.TrimSpace(inviteCode))

	if username == "" {
		return ErrEmptyUsername
	}
	if password == "" {
		return ErrEmptyPassword
	}
	if s.cfg.RequireInvite && inviteCode == "" {
		return ErrInviteRequired
	}
	if !s.cfg.RequireInvite {
		inviteCode = ""
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if err := s.users.RegisterUser(ctx, username, hash, inviteCode); err != nil {
		s.log.WithError(err).WithField("user", username).Warn("registration rejected")
		return err
	}

	s.log.WithField("user", username).Info("user registered")
	return nil
}

// Login checks credentials and returns the user on success.
func (s *Service) Login(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.users.UserHash(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	if !VerifyPassword(hash, password) {
		s.log.WithField("user", username).Info("failed login")
		return nil, ErrInvalidCredentials
	}

	s.log.WithField("user", username).Info("login")
	return &store.User{Username: username}, nil
}

// SetPassword creates the user or replaces its password. It bypasses the
// invitation check and is meant for administrators.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	if password == "" {
		return ErrEmptyPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.AddUser(ctx, username, hash)
}

// IssueInvites generates and stores n new invitation codes.
func (s *Service) IssueInvites(ctx context.Context, n int) ([]string, error) {
	codes := make([]string, 0, n)
	for range n {
		code, err := NewInviteCode()
		if err != nil {
			return codes, err
		}
		if err := s.invites.AddInvitationCode(ctx, code); err != nil {
			return codes, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// NewInviteCode returns a random code of InviteCodeLength characters.
func NewInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
