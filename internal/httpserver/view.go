package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

// view is the data handed to a page. Every page sees the signed in user,
// the notification list and the pending flash messages.
type view map[string]any

func render(c echo.Context, code int, page string, v view) error {
	if v == nil {
		v = view{}
	}
	sess := session.From(c)
	if sess != nil {
		v["User"] = sess.User
		v["Notifications"] = sess.Notifications
		v["Unread"] = sess.UnreadCount()
		v["Errors"] = sess.TakeFlashes(session.FlashError)
		v["Successes"] = sess.TakeFlashes(session.FlashSuccess)
		if _, ok := v["Form"]; !ok {
			v["Form"] = sess.TakeFormData()
		}
	} else {
		v["User"] = (*session.User)(nil)
		v["Form"] = map[string]string{}
	}
	v["CSRF"] = csrf.Token(c)
	return c.Render(code, page, v)
}

func flashRedirect(c echo.Context, kind session.FlashKind, msg, to string) error {
	if sess := session.From(c); sess != nil {
		sess.AddFlash(kind, msg)
	}
	return c.Redirect(http.StatusFound, to)
}

func currentUser(c echo.Context) *session.User {
	if sess := session.From(c); sess != nil {
		return sess.User
	}
	return nil
}

func paramID(c echo.Context) (uint, bool) {
	return util.ParseUint(c.Param("id"))
}

// ErrorHandler answers failed requests with a plain text body, matching the
// text responses the handlers write themselves.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.String(code, msg)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
