package httpserver

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/upload"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var testSecret = []byte("handler-test-secret")

type harness struct {
	e       *echo.Echo
	db      *gorm.DB
	events  *events.Recorder
	hub     *notify.Hub
	store   *session.MemoryStore
	uploads string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.InitTestDB(t)
	r := &repo.GormRepo{DB: db}
	rec := &events.Recorder{}
	hub := notify.NewHub()
	t.Cleanup(hub.Close)
	store := session.NewMemoryStore()

	sessions := session.NewManager(store, testSecret, 7*24*time.Hour)
	sessions.Notifier = hub

	dir := t.TempDir()
	e := echo.New()
	e.Use(loggingmw.RequestLogger(logging.Discard()))

	err := Register(e, &Deps{
		DB:       db,
		Sessions: sessions,
		Hub:      hub,
		Uploads:  upload.NewDir(dir),
		CSRF:     csrf.DefaultConfig(),
		Auth:     &service.AuthService{Repo: r, Events: rec},
		Users:    &service.UserService{Repo: r, Events: rec},
		Catalog:  &service.CatalogService{Repo: r, Events: rec},
		Cart:     &service.CartService{Repo: r, Events: rec},
		Checkout: &service.CheckoutService{Repo: r, Events: rec},
	})
	require.NoError(t, err)

	return &harness{e: e, db: db, events: rec, hub: hub, store: store, uploads: dir}
}

func (h *harness) user(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	return testutil.CreateUser(t, h.db, email, "secret1", role)
}

func (h *harness) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	return testutil.CreateProduct(t, h.db, name, price, stock)
}

func (h *harness) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, h.db.First(&p, id).Error)
	return p.Quantity
}

// client is a browser: it keeps cookies and echoes the CSRF token back.
type client struct {
	t   *testing.T
	h   *harness
	jar map[string]*http.Cookie
}

func (h *harness) client(t *testing.T) *client {
	return &client{t: t, h: h, jar: map[string]*http.Cookie{}}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()

	if req.Method != http.MethodGet {
		if _, ok := c.jar["XSRF-TOKEN"]; !ok {
			c.get("/")
		}
		req.Header.Set("Origin", "http://example.com")
		if ck, ok := c.jar["XSRF-TOKEN"]; ok {
			req.Header.Set("X-CSRF-Token", ck.Value)
		}
	}
	for _, ck := range c.jar {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	rec := httptest.NewRecorder()
	c.h.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.jar, ck.Name)
			continue
		}
		c.jar[ck.Name] = ck
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c.send(req)
}

type filePart struct {
	field, name string
	body        []byte
}

func (c *client) postMultipart(path string, fields map[string]string, files ...filePart) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(c.t, err)
		_, err = io.Copy(part, bytes.NewReader(f.body))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return c.send(req)
}

func (c *client) login(email string) {
	c.t.Helper()
	rec := c.post("/login", url.Values{"email": {email}, "password": {"secret1"}})
	require.Equal(c.t, http.StatusFound, rec.Code)
}

func (c *client) sessionID() string {
	c.t.Helper()
	ck, ok := c.jar[session.DefaultCookieName]
	require.True(c.t, ok, "no session cookie")
	id, err := tokens.SessionIDFromToken(ck.Value, testSecret)
	require.NoError(c.t, err)
	return id
}

func location(rec *httptest.ResponseRecorder) string {
	return rec.Header().Get(echo.HeaderLocation)
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
