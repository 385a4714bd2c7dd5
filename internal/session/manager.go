package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	DefaultCookieName = "storefront.sid"
	contextKey        = "session"
)

// Notifier receives every notification added through the manager.
type Notifier interface {
	Publish(sessionID string, v any) error
}

type Manager struct {
	Store      Store
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Secure     bool
	Notifier   Notifier
}

func NewManager(store Store, secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		Store:      store,
		Secret:     secret,
		TTL:        ttl,
		CookieName: DefaultCookieName,
	}
}

// Middleware loads the session named by the cookie, or starts a new one, and
// persists it before the response is written.
func (m *Manager) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		sess := m.load(c)
		c.Set(contextKey, sess)

		c.Response().Before(func() { m.persist(ctx, c) })
		err := next(c)
		m.persist(ctx, c)
		return err
	}
}

func (m *Manager) load(c echo.Context) *Session {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("component", "session")

	if ck, err := c.Cookie(m.CookieName); err == nil && ck.Value != "" {
		id, err := tokens.SessionIDFromToken(ck.Value, m.Secret)
		if err == nil {
			sess, err := m.Store.Get(ctx, id)
			if err == nil {
				return sess
			}
			if !errors.Is(err, ErrNotFound) {
				l.Error("session_load_error", "error", err)
			}
		}
	}

	sess := New(uuid.NewString())
	m.setCookie(c, sess.ID)
	return sess
}

func (m *Manager) persist(ctx context.Context, c echo.Context) {
	sess := From(c)
	if !sess.Dirty() {
		return
	}
	if err := m.Store.Save(ctx, sess, m.TTL); err != nil {
		logging.FromContext(ctx).Error("session_save_error", "session_id", sess.ID, "error", err)
		return
	}
	sess.MarkClean()
}

func (m *Manager) setCookie(c echo.Context, id string) {
	exp := time.Now().Add(m.TTL)
	token, err := tokens.SignSession(id, exp, m.Secret)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("session_sign_error", "error", err)
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     m.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Regenerate moves the session contents to a fresh id. Called on login.
func (m *Manager) Regenerate(c echo.Context) error {
	sess := From(c)
	if sess == nil {
		return errors.New("no session in context")
	}
	old := sess.ID
	if err := m.Store.Delete(c.Request().Context(), old); err != nil {
		return err
	}
	sess.ID = uuid.NewString()
	sess.dirty = true
	m.setCookie(c, sess.ID)
	return nil
}

// Destroy removes the stored session and expires the cookie.
func (m *Manager) Destroy(c echo.Context) error {
	sess := From(c)
	if sess != nil {
		if err := m.Store.Delete(c.Request().Context(), sess.ID); err != nil {
			return err
		}
		sess.MarkClean()
	}
	c.Set(contextKey, (*Session)(nil))
	c.SetCookie(&http.Cookie{
		Name:     m.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Notify appends n to the request session and forwards it to live listeners.
func (m *Manager) Notify(c echo.Context, n Notification) {
	sess := From(c)
	if sess == nil {
		return
	}
	stored := sess.AddNotification(n)
	if m.Notifier != nil {
		if err := m.Notifier.Publish(sess.ID, stored); err != nil {
			logging.FromContext(c.Request().Context()).Warn("notification_push_error", "error", err)
		}
	}
}

// From returns the request session, or nil when the middleware did not run.
func From(c echo.Context) *Session {
	s, _ := c.Get(contextKey).(*Session)
	return s
}
