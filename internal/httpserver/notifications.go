package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type NotificationsHTTP struct {
	Hub *notify.Hub
}

func (h *NotificationsHTTP) List(c echo.Context) error {
	return render(c, http.StatusOK, "notifications", nil)
}

func (h *NotificationsHTTP) MarkAllRead(c echo.Context) error {
	session.From(c).MarkAllRead()
	return c.Redirect(http.StatusFound, "/notifications")
}

// Live streams notifications added to this session while the page is open.
func (h *NotificationsHTTP) Live(c echo.Context) error {
	if h.Hub == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "notifications unavailable")
	}
	if err := h.Hub.ServeWS(c.Response(), c.Request(), session.From(c).ID); err != nil {
		logging.FromContext(c.Request().Context()).Debug("notifications_ws_closed", "error", err)
	}
	return nil
}

func (h *NotificationsHTTP) Orders(c echo.Context) error {
	return render(c, http.StatusOK, "orders", view{"Orders": session.From(c).Orders})
}
