package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/upload"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type Deps struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Hub      *notify.Hub
	Uploads  *upload.Dir
	CSRF     csrf.Config

	Auth     *service.AuthService
	Users    *service.UserService
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Checkout *service.CheckoutService
}

// Register installs the renderer, the session and CSRF middleware and every
// route of the storefront on e.
func Register(e *echo.Echo, d *Deps) error {
	r, err := NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := pkgdb.Ping(ctx, d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Uploads != nil {
		e.Static(d.Uploads.URLPrefix, d.Uploads.Root)
	}

	authH := &AuthHTTP{Svc: d.Auth, Sessions: d.Sessions}
	usersH := &UsersHTTP{Svc: d.Users, Sessions: d.Sessions}
	catalogH := &CatalogHTTP{Svc: d.Catalog, Uploads: d.Uploads}
	cartH := &CartHTTP{Svc: d.Cart, Checkout: d.Checkout, Sessions: d.Sessions}
	notesH := &NotificationsHTTP{Hub: d.Hub}

	guard := auth.NewGuard(lookupPrincipal, func(c echo.Context, msg, to string) error {
		return flashRedirect(c, session.FlashError, msg, to)
	})

	// Guards sit on each route rather than on sub groups so unknown paths
	// still answer 404 instead of a login redirect.
	site := e.Group("", d.Sessions.Middleware, csrf.Middleware(d.CSRF))
	site.GET("/", authH.Home)
	site.GET("/register", authH.ShowRegister)
	site.POST("/register", authH.Register)
	site.GET("/login", authH.ShowLogin)
	site.POST("/login", authH.Login)
	site.GET("/logout", authH.Logout)

	site.GET("/profile", usersH.ShowProfile, guard.RequireAuth)
	site.POST("/profile", usersH.UpdateProfile, guard.RequireAuth)
	site.GET("/shopping", catalogH.Shopping, guard.RequireAuth)
	site.GET("/search", catalogH.Search, guard.RequireAuth)
	site.GET("/product/:id", catalogH.ShowProduct, guard.RequireAuth)
	site.POST("/add-to-cart/:id", cartH.AddToCart, guard.RequireAuth)
	site.GET("/cart", cartH.ShowCart, guard.RequireAuth)
	site.POST("/cart/update/:id", cartH.UpdateCartItem, guard.RequireAuth)
	site.POST("/cart/delete/:id", cartH.DeleteCartItem, guard.RequireAuth)
	site.GET("/checkout", cartH.ShowCheckout, guard.RequireAuth)
	site.POST("/checkout", cartH.PlaceOrder, guard.RequireAuth)
	site.GET("/notifications", notesH.List, guard.RequireAuth)
	site.POST("/notifications/mark-read", notesH.MarkAllRead, guard.RequireAuth)
	site.GET("/notifications/ws", notesH.Live, guard.RequireAuth)
	site.GET("/orders", notesH.Orders, guard.RequireAuth)

	site.GET("/inventory", catalogH.Inventory, guard.RequireAdmin)
	site.GET("/inventory/export", catalogH.ExportInventory, guard.RequireAdmin)
	site.POST("/inventory/import", catalogH.ImportInventory, guard.RequireAdmin)
	site.GET("/addProduct", catalogH.ShowAddProduct, guard.RequireAdmin)
	site.POST("/addProduct", catalogH.AddProduct, guard.RequireAdmin)
	site.GET("/updateProduct/:id", catalogH.ShowUpdateProduct, guard.RequireAdmin)
	site.POST("/updateProduct/:id", catalogH.UpdateProduct, guard.RequireAdmin)
	site.GET("/deleteProduct/:id", catalogH.DeleteProduct, guard.RequireAdmin)
	site.GET("/users", usersH.ListUsers, guard.RequireAdmin)
	site.GET("/users/:id/edit", usersH.ShowEditUser, guard.RequireAdmin)
	site.POST("/users/:id/edit", usersH.EditUser, guard.RequireAdmin)

	return nil
}

func lookupPrincipal(c echo.Context) (auth.Principal, bool) {
	u := currentUser(c)
	if u == nil {
		return auth.Principal{}, false
	}
	return auth.Principal{ID: u.ID, Role: string(u.Role)}, true
}
