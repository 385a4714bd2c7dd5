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
)

type ProfileInput struct {
	Username string
	Email    string
	Address  string
	Contact  string
}

type AdminUserInput struct {
	Username string
	Email    string
	Address  string
	Contact  string
	Role     string
}

type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// UpdateProfile changes the caller's own details. The role is never touched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" {
		return nil, fail(ErrValidation, "Username and email are required.")
	}

	current, err := s.Repo.UserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	return s.update(ctx, userID, repo.UserUpdate{
		Username: in.Username,
		Email:    in.Email,
		Address:  strings.TrimSpace(in.Address),
		Contact:  strings.TrimSpace(in.Contact),
		Role:     current.Role,
	}, "profile_updated")
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "User not found")
	}
	return user, err
}

func (s *UserService) AdminUpdateUser(ctx context.Context, id uint, in AdminUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if in.Username == "" || in.Email == "" || in.Role == "" {
		return nil, fail(ErrValidation, "Username, email, and role are required.")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, fail(ErrValidation, "Role must be user or admin.")
	}

	return s.update(ctx, id, repo.UserUpdate{
		Username: in.Username,
		Email:    in.Email,
		Address:  strings.TrimSpace(in.Address),
		Contact:  strings.TrimSpace(in.Contact),
		Role:     role,
	}, "user_updated")
}

func (s *UserService) update(ctx context.Context, id uint, upd repo.UserUpdate, eventType string) (*models.User, error) {
	user, err := s.Repo.UpdateUser(ctx, id, upd)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fail(ErrNotFound, "User not found")
	case errors.Is(err, repo.ErrDuplicate):
		return nil, fail(ErrConflict, "Email is already registered.")
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}

	emit(ctx, s.Events, events.TopicUser, events.Key(user.ID), events.New(eventType, map[string]any{
		"userID": user.ID,
		"role":   user.Role,
	}))
	return user, nil
}
