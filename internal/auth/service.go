package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tokeley/researchlog/internal/models"
	"github.com/tokeley/researchlog/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// UserFinder is the slice of the credential store that login needs.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Unknown usernames are checked against dummyHash so they take as long to
// reject as a wrong password.
var (
	compareHash = bcrypt.CompareHashAndPassword
	dummyHash   = sync.OnceValue(func() []byte {
		h, _ := bcrypt.GenerateFromPassword([]byte("researchlog-dummy-password"), bcrypt.DefaultCost)
		return h
	})
)

type Service struct {
	users  UserFinder
	tokens *Tokens
	log    *slog.Logger
}

func NewService(users UserFinder, tokens *Tokens, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, tokens: tokens, log: log}
}

// Login exchanges admin credentials for a token. The password is checked
// before the admin flag so that admin status is not disclosed to callers
// who do not know the password.
func (s *Service) Login(ctx context.Context, username, password string) (string, models.UserPublic, error) {
	if username == "" || password == "" {
		return "", models.UserPublic{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		_ = compareHash(dummyHash(), []byte(password))
		s.log.Info("login rejected", "username", username, "reason", "unknown user")
		return "", models.UserPublic{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", models.UserPublic{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login rejected", "username", username, "reason", "bad password")
		return "", models.UserPublic{}, ErrInvalidCredentials
	}
	if !user.IsAdmin {
		s.log.Info("login rejected", "username", username, "reason", "not admin")
		return "", models.UserPublic{}, ErrForbidden
	}

	token, err := s.tokens.Issue(Identity{UserID: user.ID, IsAdmin: user.IsAdmin})
	if err != nil {
		return "", models.UserPublic{}, err
	}
	return token, user.Public(), nil
}

func (s *Service) Verify(token string) (Identity, error) {
	return s.tokens.Verify(token)
}
