package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

const MinPasswordLength = 6

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Address  string
	Contact  string
	Role     string
}

// FormData is the submission echoed back to the form after a failure.
// The password is never included.
func (in RegisterInput) FormData() map[string]string {
	return map[string]string{
		"username": in.Username,
		"email":    in.Email,
		"address":  in.Address,
		"contact":  in.Contact,
		"role":     in.Role,
	}
}

type AuthService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Role = strings.TrimSpace(in.Role)

	if in.Username == "" || in.Email == "" || in.Password == "" ||
		in.Address == "" || in.Contact == "" || in.Role == "" {
		return nil, fail(ErrValidation, "All fields are required.")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fail(ErrValidation, "Password should be at least 6 or more characters long")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, fail(ErrValidation, "Role must be user or admin.")
	}

	hashed, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		Address:      in.Address,
		Contact:      in.Contact,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fail(ErrConflict, "Email is already registered.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	emit(ctx, s.Events, events.TopicUser, events.Key(user.ID), events.New("user_registered", map[string]any{
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	}))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fail(ErrValidation, "All fields are required.")
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrInvalidCredentials, "Invalid email or password.")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fail(ErrInvalidCredentials, "Invalid email or password.")
	}

	emit(ctx, s.Events, events.TopicUser, events.Key(user.ID), events.New("user_logged_in", map[string]any{
		"userID": user.ID,
	}))
	return user, nil
}

// SeedAdmin creates an admin account directly, bypassing the public form.
func (s *AuthService) SeedAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	return s.Register(ctx, RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Address:  "-",
		Contact:  "-",
		Role:     string(models.RoleAdmin),
	})
}
