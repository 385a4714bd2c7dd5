package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UsersHTTP struct {
	Svc      *service.UserService
	Sessions *session.Manager
}

func (h *UsersHTTP) ShowProfile(c echo.Context) error {
	return render(c, http.StatusOK, "profile", nil)
}

func (h *UsersHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_profile")
	sess := session.From(c)

	updated, err := h.Svc.UpdateProfile(ctx, sess.User.ID, service.ProfileInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Address:  c.FormValue("address"),
		Contact:  c.FormValue("contact"),
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrConflict) {
			l.Info("update_profile_rejected", "status", http.StatusFound, "reason", err.Error())
			return flashRedirect(c, session.FlashError, service.Message(err, ""), "/profile")
		}
		l.Error("update_profile_error", "status", http.StatusFound, "reason", "cannot update user", "error", err)
		return flashRedirect(c, session.FlashError, "Error updating profile.", "/profile")
	}

	sess.SetUser(session.UserFromModel(updated))
	h.Sessions.Notify(c, session.ProfileUpdated())
	return flashRedirect(c, session.FlashSuccess, "Profile updated successfully.", "/profile")
}

func (h *UsersHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		l.Error("list_users_error", "status", http.StatusInternalServerError, "reason", "cannot load users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load users")
	}
	return render(c, http.StatusOK, "users", view{"Users": users})
}

func (h *UsersHTTP) ShowEditUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.show_edit")

	id, ok := paramID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	target, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("show_edit_user_failed", "status", http.StatusNotFound, "reason", "no such user", "user", id)
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		l.Error("show_edit_user_error", "status", http.StatusInternalServerError, "reason", "cannot load user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return render(c, http.StatusOK, "editUser", view{"Target": target})
}

func (h *UsersHTTP) EditUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.edit")

	id, ok := paramID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	updated, err := h.Svc.AdminUpdateUser(ctx, id, service.AdminUserInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Address:  c.FormValue("address"),
		Contact:  c.FormValue("contact"),
		Role:     c.FormValue("role"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
			l.Info("edit_user_rejected", "status", http.StatusFound, "reason", err.Error())
			return flashRedirect(c, session.FlashError, service.Message(err, ""), fmt.Sprintf("/users/%d/edit", id))
		}
		l.Error("edit_user_error", "status", http.StatusInternalServerError, "reason", "cannot update user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update user")
	}

	if sess := session.From(c); sess.User != nil && sess.User.ID == updated.ID {
		sess.SetUser(session.UserFromModel(updated))
	}
	l.Info("edit_user_success", "user", updated.ID, "role", updated.Role)
	return flashRedirect(c, session.FlashSuccess, "User updated successfully", "/users")
}
