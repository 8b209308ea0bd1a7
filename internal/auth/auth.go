// Package auth resolves users against the store and maintains the
// persisted session pointer. Passwords are stored as bcrypt hashes and
// compared in constant time; the cleartext never touches the store.
package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// SignUpInput carries the signup form fields.
type SignUpInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Service struct {
	store  storage.Store
	logger *log.Logger
}

func NewService(store storage.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		store:  store,
		logger: logger.WithComponent(log.ComponentAuth),
	}
}

// SignUp registers a user and writes the session pointer. Emails are
// unique across users.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (core.Session, error) {
	if strings.TrimSpace(in.Name) == "" {
		return core.Session{}, core.NewValidationError("name", "must not be empty")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return core.Session{}, core.NewValidationError("email", "must be a valid address")
	}
	if len(in.Password) < minPasswordLen {
		return core.Session{}, core.NewValidationError("password", "must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		return core.Session{}, core.NewValidationError("confirmPassword", "must match password")
	}

	users, err := storage.LoadAll[core.User](ctx, s.store, storage.CollectionUsers)
	if err != nil {
		return core.Session{}, err
	}
	for _, u := range users {
		if u.Email == in.Email {
			return core.Session{}, &core.DuplicateError{Resource: "user", Key: in.Email}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return core.Session{}, err
	}

	user := core.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	users = append(users, user)
	if err := storage.SaveAll(ctx, s.store, storage.CollectionUsers, users); err != nil {
		return core.Session{}, err
	}

	sess := core.Session{UserID: user.ID, Name: user.Name, Email: user.Email}
	if err := storage.SaveOne(ctx, s.store, storage.CollectionCurrentUser, sess); err != nil {
		return core.Session{}, err
	}

	s.logger.InfoContext(ctx, "User signed up", log.FieldUserID, user.ID)
	return sess, nil
}

// LogIn resolves a user by email and password and writes the session
// pointer. It does not reveal whether the email exists.
func (s *Service) LogIn(ctx context.Context, email, password string) (core.Session, error) {
	users, err := storage.LoadAll[core.User](ctx, s.store, storage.CollectionUsers)
	if err != nil {
		return core.Session{}, err
	}

	for _, u := range users {
		if u.Email != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return core.Session{}, core.ErrInvalidCredentials
			}
			return core.Session{}, err
		}

		sess := core.Session{UserID: u.ID, Name: u.Name, Email: u.Email}
		if err := storage.SaveOne(ctx, s.store, storage.CollectionCurrentUser, sess); err != nil {
			return core.Session{}, err
		}
		s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, u.ID)
		return sess, nil
	}

	return core.Session{}, core.ErrInvalidCredentials
}

// LogOut clears the session pointer.
func (s *Service) LogOut(ctx context.Context) error {
	return s.store.Delete(ctx, storage.CollectionCurrentUser)
}

// Current returns the persisted session pointer, nil when logged out.
func (s *Service) Current(ctx context.Context) (*core.Session, error) {
	return storage.LoadOne[core.Session](ctx, s.store, storage.CollectionCurrentUser)
}
