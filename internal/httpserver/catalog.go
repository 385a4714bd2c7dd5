package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/export"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/upload"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const maxImportSize = 10 << 20

type CatalogHTTP struct {
	Svc     *service.CatalogService
	Uploads *upload.Dir
}

func (h *CatalogHTTP) listing(c echo.Context, page string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog."+page)

	filters, pf := service.ParseFilters(c.QueryParam("q"), c.QueryParam("minPrice"), c.QueryParam("maxPrice"))
	products, err := h.Svc.ListProducts(ctx, pf)
	if err != nil {
		l.Error("list_products_error", "status", http.StatusInternalServerError, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load products")
	}
	return render(c, http.StatusOK, page, view{"Products": products, "Filters": filters})
}

func (h *CatalogHTTP) Inventory(c echo.Context) error { return h.listing(c, "inventory") }

func (h *CatalogHTTP) Shopping(c echo.Context) error { return h.listing(c, "shopping") }

func (h *CatalogHTTP) ShowProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.show_product")

	id, ok := paramID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("show_product_failed", "status", http.StatusNotFound, "reason", "no such product", "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("show_product_error", "status", http.StatusInternalServerError, "reason", "cannot load product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}
	return render(c, http.StatusOK, "product", view{"Product": product})
}

func (h *CatalogHTTP) ShowAddProduct(c echo.Context) error {
	return render(c, http.StatusOK, "addProduct", nil)
}

// image stores the uploaded "image" file, if one was sent.
func (h *CatalogHTTP) image(c echo.Context) (*string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) || (err == nil && fh.Size == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	url, err := h.Uploads.Save(fh)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func productForm(c echo.Context) map[string]string {
	return map[string]string{
		"name":     c.FormValue("name"),
		"quantity": c.FormValue("quantity"),
		"price":    c.FormValue("price"),
	}
}

func (h *CatalogHTTP) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.add_product")

	form := productForm(c)
	img, err := h.image(c)
	if err != nil {
		l.Warn("add_product_error", "status", http.StatusFound, "reason", "bad image upload", "error", err)
		session.From(c).SetFormData(form)
		return flashRedirect(c, session.FlashError, "Image could not be uploaded.", "/addProduct")
	}

	product, err := h.Svc.CreateProduct(ctx, service.ProductInput{
		Name:     form["name"],
		Quantity: form["quantity"],
		Price:    form["price"],
		Image:    img,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Info("add_product_rejected", "status", http.StatusFound, "reason", err.Error())
			session.From(c).SetFormData(form)
			return flashRedirect(c, session.FlashError, service.Message(err, ""), "/addProduct")
		}
		l.Error("add_product_error", "status", http.StatusInternalServerError, "reason", "cannot create product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create product")
	}

	l.Info("add_product_success", "product_id", product.ID)
	return c.Redirect(http.StatusFound, "/inventory")
}

func (h *CatalogHTTP) ShowUpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := paramID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	product, err := h.Svc.GetProduct(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		logging.FromContext(ctx).Error("show_update_product_error", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}
	return render(c, http.StatusOK, "updateProduct", view{"Product": product})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	id, ok := paramID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	back := fmt.Sprintf("/updateProduct/%d", id)

	img, err := h.image(c)
	if err != nil {
		l.Warn("update_product_error", "status", http.StatusFound, "reason", "bad image upload", "error", err)
		return flashRedirect(c, session.FlashError, "Image could not be uploaded.", back)
	}
	if img == nil {
		if cur := strings.TrimSpace(c.FormValue("currentImage")); cur != "" {
			img = &cur
		}
	}

	form := productForm(c)
	_, err = h.Svc.UpdateProduct(ctx, id, service.ProductInput{
		Name:     form["name"],
		Quantity: form["quantity"],
		Price:    form["price"],
		Image:    img,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrValidation):
			l.Info("update_product_rejected", "status", http.StatusFound, "reason", err.Error())
			return flashRedirect(c, session.FlashError, service.Message(err, ""), back)
		}
		l.Error("update_product_error", "status", http.StatusInternalServerError, "reason", "cannot update product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}
	return c.Redirect(http.StatusFound, "/inventory")
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, ok := paramID(c)
	if !ok {
		return flashRedirect(c, session.FlashError, "Product not found", "/inventory")
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_product_failed", "status", http.StatusFound, "reason", "no such product", "product_id", id)
			return flashRedirect(c, session.FlashError, "Product not found", "/inventory")
		}
		l.Error("delete_product_error", "status", http.StatusInternalServerError, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}
	l.Info("delete_product_success", "product_id", id)
	return c.Redirect(http.StatusFound, "/inventory")
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.Search(ctx, q, offset, limit)
	if err != nil {
		l.Error("search_error", "status", http.StatusInternalServerError, "reason", "cannot search products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search products")
	}

	p := util.NewPage(page, limit, res.Total)
	l.Debug("search_success", "query", q, "source", res.Source, "total", res.Total)
	return render(c, http.StatusOK, "search", view{
		"Query":    q,
		"Products": res.Products,
		"Page":     p,
		"PrevPage": p.Number - 1,
		"NextPage": p.Number + 1,
	})
}

func (h *CatalogHTTP) ExportInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.export")

	_, pf := service.ParseFilters("", "", "")
	products, err := h.Svc.ListProducts(ctx, pf)
	if err != nil {
		l.Error("export_error", "status", http.StatusInternalServerError, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load products")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, export.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="inventory.xlsx"`)
	res.WriteHeader(http.StatusOK)
	if err := export.WriteProducts(res, products); err != nil {
		l.Error("export_error", "reason", "cannot write workbook", "error", err)
		return nil
	}
	l.Info("export_success", "products", len(products))
	return nil
}

func (h *CatalogHTTP) ImportInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.import")

	fh, err := c.FormFile("file")
	if err != nil {
		return flashRedirect(c, session.FlashError, "Choose an Excel file to import.", "/inventory")
	}
	if fh.Size > maxImportSize {
		return flashRedirect(c, session.FlashError, "The file is too large.", "/inventory")
	}
	f, err := fh.Open()
	if err != nil {
		l.Error("import_error", "reason", "cannot open upload", "error", err)
		return flashRedirect(c, session.FlashError, "The file could not be read.", "/inventory")
	}
	defer f.Close()

	rows, skipped, err := export.ReadProducts(f, fh.Size)
	if err != nil {
		l.Warn("import_rejected", "status", http.StatusFound, "reason", "bad workbook", "error", err)
		return flashRedirect(c, session.FlashError, "The file is not a valid inventory workbook.", "/inventory")
	}

	res, err := h.Svc.Import(ctx, rows)
	if err != nil {
		l.Error("import_error", "status", http.StatusInternalServerError, "reason", "cannot save products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot import products")
	}
	res.Skipped += skipped

	l.Info("import_success", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
	msg := fmt.Sprintf("Imported %d new and %d updated products.", res.Created, res.Updated)
	if res.Skipped > 0 {
		msg += fmt.Sprintf(" Skipped %d rows.", res.Skipped)
	}
	return flashRedirect(c, session.FlashSuccess, msg, "/inventory")
}
