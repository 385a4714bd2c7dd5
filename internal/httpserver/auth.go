package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Sessions *session.Manager
}

func (h *AuthHTTP) Home(c echo.Context) error {
	return render(c, http.StatusOK, "index", nil)
}

func (h *AuthHTTP) ShowRegister(c echo.Context) error {
	return render(c, http.StatusOK, "register", nil)
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	in := service.RegisterInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Address:  c.FormValue("address"),
		Contact:  c.FormValue("contact"),
		Role:     c.FormValue("role"),
	}

	user, err := h.Svc.Register(ctx, in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrConflict) {
			l.Info("register_rejected", "status", http.StatusFound, "reason", err.Error())
			session.From(c).SetFormData(in.FormData())
			return flashRedirect(c, session.FlashError, service.Message(err, ""), "/register")
		}
		l.Error("register_error", "status", http.StatusInternalServerError, "reason", "cannot create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
	}

	l.Info("register_success", "user_id", user.ID)
	return flashRedirect(c, session.FlashSuccess, "Registration successful! Please log in.", "/login")
}

func (h *AuthHTTP) ShowLogin(c echo.Context) error {
	return render(c, http.StatusOK, "login", nil)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	email := c.FormValue("email")
	user, err := h.Svc.Login(ctx, email, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrInvalidCredentials) {
			l.Info("login_rejected", "status", http.StatusFound, "reason", err.Error())
			session.From(c).SetFormData(map[string]string{"email": email})
			return flashRedirect(c, session.FlashError, service.Message(err, ""), "/login")
		}
		l.Error("login_error", "status", http.StatusInternalServerError, "reason", "cannot load user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}

	if err := h.Sessions.Regenerate(c); err != nil {
		l.Error("login_error", "status", http.StatusInternalServerError, "reason", "cannot rotate session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}
	session.From(c).SetUser(session.UserFromModel(user))

	l.Info("login_success", "user_id", user.ID, "role", user.Role)
	to := "/shopping"
	if user.IsAdmin() {
		to = "/inventory"
	}
	return flashRedirect(c, session.FlashSuccess, "Login successful!", to)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Sessions.Destroy(c); err != nil {
		l.Error("logout_error", "status", http.StatusInternalServerError, "reason", "cannot destroy session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log out")
	}
	return c.Redirect(http.StatusFound, "/")
}
