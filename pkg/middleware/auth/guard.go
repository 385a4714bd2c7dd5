package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"

	RoleAdmin = "admin"
)

// Principal is the signed in account a request acts for.
type Principal struct {
	ID   uint
	Role string
}

// LookupFunc returns the principal of the request, if any.
type LookupFunc func(c echo.Context) (Principal, bool)

// DenyFunc answers a request that failed a guard, usually with a flash
// message and a redirect.
type DenyFunc func(c echo.Context, msg, redirectTo string) error

type Guard struct {
	Lookup LookupFunc
	Deny   DenyFunc

	LoginPath    string
	LoginMessage string
	HomePath     string
	AdminMessage string
}

func NewGuard(lookup LookupFunc, deny DenyFunc) *Guard {
	return &Guard{
		Lookup:       lookup,
		Deny:         deny,
		LoginPath:    "/login",
		LoginMessage: "Please log in to view this resource",
		HomePath:     "/shopping",
		AdminMessage: "Access denied",
	}
}

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, false)
}

// RequireAdmin implies RequireAuth.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, true)
}

func (g *Guard) require(next echo.HandlerFunc, admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth.guard")

		p, ok := g.Lookup(c)
		if !ok {
			l.Info("guard_denied", "status", http.StatusFound, "reason", "not signed in", "path", c.Path())
			return g.Deny(c, g.LoginMessage, g.LoginPath)
		}
		setUserContext(c, p)

		if admin && p.Role != RoleAdmin {
			l.Warn("guard_denied", "status", http.StatusFound, "reason", "admin required", "user_id", p.ID, "path", c.Path())
			return g.Deny(c, g.AdminMessage, g.HomePath)
		}
		return next(c)
	}
}

func setUserContext(c echo.Context, p Principal) {
	c.Set(UserIDKey, p.ID)
	c.Set(RoleKey, p.Role)
}

// UserID returns the id stored by a guard, or zero.
func UserID(c echo.Context) uint {
	id, _ := c.Get(UserIDKey).(uint)
	return id
}
