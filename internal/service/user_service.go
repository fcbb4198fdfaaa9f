package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	dom "Tracker/internal/domain"
	"Tracker/internal/repo"
	"Tracker/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// MaxUsernameLen bounds registered usernames.
const MaxUsernameLen = 120

// UserService handles registration and credential checks.
type UserService struct {
	repo repo.UserRepo
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService returns a new UserService hashing with bcrypt.DefaultCost.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Register creates a new user with hashed password. Usernames are stored and
// compared byte for byte; "Alice" and "alice" are different accounts.
func (s *UserService) Register(ctx context.Context, username, password string) (dom.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return dom.User{}, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}
	if strings.TrimSpace(username) != username {
		return dom.User{}, fmt.Errorf("%w: username must not start or end with whitespace", ErrInvalidInput)
	}
	if len(username) > MaxUsernameLen {
		return dom.User{}, fmt.Errorf("%w: username too long", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return dom.User{}, fmt.Errorf("%w: password too long", ErrInvalidInput)
		}
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// Authenticate checks username and password. An unknown user and a wrong
// password both yield ErrInvalidCredentials, and both cost one bcrypt
// comparison.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (dom.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}
