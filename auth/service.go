// Package auth registers staff users and verifies their credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/blogcms/content"
)

// MaxLoginHistory is the number of login entries kept per user.
const MaxLoginHistory = 10

// maxUserAgent caps the stored User-Agent header in bytes. Ten entries must
// still fit in the encrypted session cookie.
const maxUserAgent = 120

var (
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrUserNameTaken     = errors.New("user name already exists")
	ErrMissingUserName   = errors.New("user name is required")
	ErrMissingPassword   = errors.New("password is required")
	ErrUserNotFound      = errors.New("unable to find user")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// Repository is the user persistence the service needs.
type Repository interface {
	GetUser(ctx context.Context, userName string) (content.User, error)
	CreateUser(ctx context.Context, u content.User) error
	UpdateLoginHistory(ctx context.Context, userName string, history []content.LoginEntry) error
}

// RegisterInput is the registration form.
type RegisterInput struct {
	UserName  string `form:"userName"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	Password2 string `form:"password2"`
}

// LoginInput is the login form plus the client's User-Agent.
type LoginInput struct {
	UserName  string `form:"userName"`
	Password  string `form:"password"`
	UserAgent string `form:"-"`
}

// Service implements registration and login.
type Service struct {
	repo Repository
	cost int
	now  func() time.Time
}

// NewService creates a Service hashing with bcrypt.DefaultCost.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
}

// RegisterUser validates the form and stores a new user with an empty history.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (content.User, error) {
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		return content.User{}, ErrMissingUserName
	}
	if in.Password == "" {
		return content.User{}, ErrMissingPassword
	}
	if in.Password != in.Password2 {
		return content.User{}, ErrPasswordMismatch
	}

	_, err := s.repo.GetUser(ctx, name)
	switch {
	case err == nil:
		return content.User{}, fmt.Errorf("%w: %s", ErrUserNameTaken, name)
	case !errors.Is(err, content.ErrNotFound):
		return content.User{}, fmt.Errorf("register user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return content.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := content.User{
		UserName:     name,
		Password:     string(hash),
		Email:        strings.TrimSpace(in.Email),
		LoginHistory: []content.LoginEntry{},
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, content.ErrDuplicate) {
			return content.User{}, fmt.Errorf("%w: %s", ErrUserNameTaken, name)
		}
		return content.User{}, fmt.Errorf("register user: %w", err)
	}
	return u, nil
}

// CheckUser verifies a login. On success the attempt is prepended to the
// user's login history and the updated user is returned. Failed attempts do
// not touch the stored record.
func (s *Service) CheckUser(ctx context.Context, in LoginInput) (content.User, error) {
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		return content.User{}, ErrMissingUserName
	}
	u, err := s.repo.GetUser(ctx, name)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return content.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, name)
		}
		return content.User{}, fmt.Errorf("check user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return content.User{}, ErrIncorrectPassword
	}

	entry := content.LoginEntry{DateTime: s.now().UTC(), UserAgent: truncate(in.UserAgent, maxUserAgent)}
	history := make([]content.LoginEntry, 0, MaxLoginHistory)
	history = append(history, entry)
	for _, e := range u.LoginHistory {
		if len(history) == MaxLoginHistory {
			break
		}
		history = append(history, e)
	}
	if err := s.repo.UpdateLoginHistory(ctx, u.UserName, history); err != nil {
		return content.User{}, fmt.Errorf("record login: %w", err)
	}
	u.LoginHistory = history
	return u, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
