package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/export"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Filters is the raw query of a product listing, echoed back to the page.
type Filters struct {
	Term     string
	MinPrice string
	MaxPrice string
}

// ParseFilters trims each value. Blank, unparsable or non-finite prices are
// not applied.
func ParseFilters(term, minPrice, maxPrice string) (Filters, repo.ProductFilter) {
	f := Filters{
		Term:     strings.TrimSpace(term),
		MinPrice: strings.TrimSpace(minPrice),
		MaxPrice: strings.TrimSpace(maxPrice),
	}

	var pf repo.ProductFilter
	if f.Term != "" {
		t := f.Term
		pf.Term = &t
	}
	if v, ok := util.ParseFloat(f.MinPrice); ok {
		pf.MinPrice = &v
	}
	if v, ok := util.ParseFloat(f.MaxPrice); ok {
		pf.MaxPrice = &v
	}
	return f, pf
}

type ProductInput struct {
	Name     string
	Quantity string
	Price    string
	Image    *string
}

func (in ProductInput) validate() (models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Product{}, fail(ErrValidation, "Product name is required.")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(in.Quantity))
	if err != nil || qty < 0 {
		return models.Product{}, fail(ErrValidation, "Quantity must be a whole number of 0 or more.")
	}
	price, ok := util.ParseFloat(in.Price)
	if !ok || price < 0 {
		return models.Product{}, fail(ErrValidation, "Price must be a number of 0 or more.")
	}
	return models.Product{ProductName: name, Quantity: qty, Price: price, Image: in.Image}, nil
}

type SearchResult struct {
	Total    int64
	Products []models.Product
	Source   string
}

type ImportResult struct {
	Created int
	Updated int
	Skipped int
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  search.Indexer
	Events events.Publisher
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.ProductByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "Product not found")
	}
	return p, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	p, err := in.validate()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.changed(ctx, "product_created", &p)
	return &p, nil
}

// UpdateProduct replaces the product fields. A nil Image keeps the stored one.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := in.validate()
	if err != nil {
		return nil, err
	}
	p.ID = id
	if p.Image == nil {
		p.Image = current.Image
	}

	err = s.Repo.UpdateProduct(ctx, &p)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.changed(ctx, "product_updated", &p)
	return &p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(ErrNotFound, "Product not found")
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_error", "product_id", id, "error", err)
		}
	}
	emit(ctx, s.Events, events.TopicProduct, events.Key(id), events.New("product_deleted", map[string]any{
		"productID": id,
	}))
	return nil
}

// Search uses the search index when one is configured and falls back to a
// name filter on the database.
func (s *CatalogService) Search(ctx context.Context, query string, from, size int) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if s.Index != nil && query != "" {
		total, items, err := s.Index.Search(ctx, query, from, size)
		if err == nil {
			return SearchResult{Total: total, Products: items, Source: "index"}, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "query", query, "error", err)
	}

	_, pf := ParseFilters(query, "", "")
	items, err := s.Repo.ListProducts(ctx, pf)
	if err != nil {
		return SearchResult{}, err
	}
	total := int64(len(items))
	from = max(from, 0)
	switch {
	case from >= len(items):
		items = nil
	case size > 0 && size < len(items)-from:
		items = items[from : from+size]
	default:
		items = items[from:]
	}
	return SearchResult{Total: total, Products: items, Source: "database"}, nil
}

// Import creates or updates products from parsed workbook rows. Rows naming
// an unknown id are created as new products.
func (s *CatalogService) Import(ctx context.Context, rows []export.Row) (ImportResult, error) {
	var res ImportResult
	for _, row := range rows {
		var image *string
		if row.Image != "" {
			img := row.Image
			image = &img
		}
		in := ProductInput{
			Name:     row.Name,
			Quantity: strconv.Itoa(row.Quantity),
			Price:    strconv.FormatFloat(row.Price, 'f', -1, 64),
			Image:    image,
		}

		if row.ID != 0 {
			_, err := s.UpdateProduct(ctx, row.ID, in)
			if err == nil {
				res.Updated++
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return res, err
			}
		}
		if _, err := s.CreateProduct(ctx, in); err != nil {
			if errors.Is(err, ErrValidation) {
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Created++
	}
	return res, nil
}

// Reindex pushes every product to the search index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return 0, err
	}
	for _, p := range items {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			return 0, fmt.Errorf("index product %d: %w", p.ID, err)
		}
	}
	return len(items), nil
}

func (s *CatalogService) changed(ctx context.Context, eventType string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, *p); err != nil {
			logging.FromContext(ctx).Error("search_index_error", "product_id", p.ID, "error", err)
		}
	}
	emit(ctx, s.Events, events.TopicProduct, events.Key(p.ID), events.New(eventType, map[string]any{
		"productID": p.ID,
		"name":      p.ProductName,
		"quantity":  p.Quantity,
		"price":     p.Price,
	}))
}
