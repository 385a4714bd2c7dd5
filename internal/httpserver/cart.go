package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc      *service.CartService
	Checkout *service.CheckoutService
	Sessions *session.Manager
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")
	user := currentUser(c)

	productID, ok := paramID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	qty := service.ParseAddQuantity(c.FormValue("quantity"))

	item, err := h.Svc.Add(ctx, user.ID, productID, qty)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("add_to_cart_failed", "status", http.StatusNotFound, "reason", "no such product", "product_id", productID)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("add_to_cart_error", "status", http.StatusInternalServerError, "reason", "cannot add to cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add to cart")
	}

	l.Info("add_to_cart_success", "product_id", productID, "quantity", item.Quantity)
	return c.Redirect(http.StatusFound, "/cart")
}

func (h *CartHTTP) ShowCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.show")

	lines, total, err := h.Svc.Cart(ctx, currentUser(c).ID)
	if err != nil {
		l.Error("show_cart_error", "status", http.StatusInternalServerError, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}
	return render(c, http.StatusOK, "cart", view{"Lines": lines, "Total": total})
}

// UpdateCartItem ignores quantities below one and always returns to the cart.
func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	itemID, ok := paramID(c)
	qty, valid := service.ParseUpdateQuantity(c.FormValue("quantity"))
	if !ok || !valid {
		return c.Redirect(http.StatusFound, "/cart")
	}

	if _, err := h.Svc.UpdateQuantity(ctx, currentUser(c).ID, itemID, qty); err != nil {
		l.Error("update_cart_error", "status", http.StatusInternalServerError, "reason", "cannot update cart item", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart item")
	}
	return c.Redirect(http.StatusFound, "/cart")
}

func (h *CartHTTP) DeleteCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete")

	itemID, ok := paramID(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/cart")
	}
	if _, err := h.Svc.Remove(ctx, currentUser(c).ID, itemID); err != nil {
		l.Error("delete_cart_error", "status", http.StatusInternalServerError, "reason", "cannot delete cart item", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete cart item")
	}
	return c.Redirect(http.StatusFound, "/cart")
}

func (h *CartHTTP) ShowCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.show_checkout")

	lines, total, err := h.Svc.Cart(ctx, currentUser(c).ID)
	if err != nil {
		l.Error("show_checkout_error", "status", http.StatusInternalServerError, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}
	return render(c, http.StatusOK, "checkout", view{"Lines": lines, "Total": total, "Completed": false})
}

func (h *CartHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")
	user := currentUser(c)

	rcpt, err := h.Checkout.Checkout(ctx, user.ID)
	if err != nil {
		var stockErr *service.StockError
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			l.Info("checkout_rejected", "status", http.StatusFound, "reason", "empty cart")
			return flashRedirect(c, session.FlashError, service.Message(err, ""), "/cart")
		case errors.As(err, &stockErr):
			l.Info("checkout_rejected", "status", http.StatusBadRequest, "reason", "insufficient stock", "product_id", stockErr.ProductID)
			return c.String(http.StatusBadRequest, stockErr.Error())
		}
		l.Error("checkout_error", "status", http.StatusInternalServerError, "reason", "cannot place order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot place order")
	}

	h.Sessions.Notify(c, session.OrderConfirmation(rcpt.OrderID, rcpt.Total))
	h.Sessions.Notify(c, session.Invoice(rcpt.OrderID))
	session.From(c).AddOrder(rcpt.Order())

	l.Info("checkout_success", "order_id", rcpt.OrderID, "total", rcpt.Total)
	return render(c, http.StatusOK, "checkout", view{
		"Lines":     rcpt.Lines,
		"Total":     rcpt.Total,
		"Completed": true,
		"OrderID":   rcpt.OrderID,
		"Timestamp": rcpt.Timestamp(),
	})
}
