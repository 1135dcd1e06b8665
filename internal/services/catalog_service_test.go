package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/shopfield/api/internal/domain"
	"github.com/shopfield/api/internal/repositories"
)

func newTestCatalogService(t *testing.T, deps CatalogServiceDeps) CatalogService {
	t.Helper()
	if deps.Repository == nil {
		deps.Repository = &stubProductRepo{}
	}
	if deps.Clock == nil {
		deps.Clock = fixedClock(time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC))
	}
	svc, err := NewCatalogService(deps)
	if err != nil {
		t.Fatalf("new catalog service: %v", err)
	}
	return svc
}

func TestCatalogServiceCreateProductDefaults(t *testing.T) {
	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	var inserted *domain.Product
	repo := &stubProductRepo{
		insertFn: func(_ context.Context, product domain.Product) error {
			inserted = &product
			return nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{
		Repository:  repo,
		Clock:       fixedClock(now),
		IDGenerator: func() string { return "prod_test" },
	})

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name:        "  Oak Shelf  ",
		Description: " Solid oak. ",
		Category:    " Furniture ",
		Price:       4999,
		Stock:       12,
		ImageURLs:   []string{" https://img/1.jpg ", ""},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if inserted == nil {
		t.Fatalf("expected product persisted")
	}
	if product.ID != "prod_test" {
		t.Fatalf("expected generated id, got %s", product.ID)
	}
	if product.Name != "Oak Shelf" || product.Description != "Solid oak." {
		t.Fatalf("expected trimmed fields, got %+v", product)
	}
	if product.Category != "furniture" {
		t.Fatalf("expected lowercased category, got %s", product.Category)
	}
	if !product.IsActive {
		t.Fatalf("expected IsActive default true")
	}
	if len(product.ImageURLs) != 1 || product.ImageURLs[0] != "https://img/1.jpg" {
		t.Fatalf("expected trimmed image urls, got %v", product.ImageURLs)
	}
	if !product.CreatedAt.Equal(now) || !product.UpdatedAt.Equal(now) {
		t.Fatalf("expected clock timestamps, got %+v", product)
	}
}

func TestCatalogServiceCreateProductValidation(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	cases := []struct {
		name string
		cmd  CreateProductCommand
	}{
		{"missing name", CreateProductCommand{Price: 100}},
		{"negative price", CreateProductCommand{Name: "Lamp", Price: -1}},
		{"negative stock", CreateProductCommand{Name: "Lamp", Price: 100, Stock: -1}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateProduct(context.Background(), tc.cmd); !errors.Is(err, ErrProductInvalidInput) {
			t.Fatalf("%s: expected ErrProductInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestCatalogServiceCreateProductExplicitInactive(t *testing.T) {
	inactive := false
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name:     "Draft Product",
		Price:    100,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.IsActive {
		t.Fatalf("expected explicit inactive flag honoured")
	}
}

func TestCatalogServiceUpdateProductPartial(t *testing.T) {
	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	existing := domain.Product{
		ID:          "prod-1",
		Name:        "Oak Shelf",
		Description: "Solid oak.",
		Category:    "furniture",
		Price:       4999,
		Stock:       12,
		IsActive:    true,
		CreatedAt:   now.Add(-48 * time.Hour),
		UpdatedAt:   now.Add(-48 * time.Hour),
	}
	var updated *domain.Product
	repo := &stubProductRepo{
		findFn: func(_ context.Context, _ string) (domain.Product, error) {
			return existing, nil
		},
		updateFn: func(_ context.Context, product domain.Product) error {
			updated = &product
			return nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{Repository: repo, Clock: fixedClock(now)})

	newPrice := int64(3999)
	product, err := svc.UpdateProduct(context.Background(), UpdateProductCommand{
		ProductID: "prod-1",
		Price:     &newPrice,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated == nil {
		t.Fatalf("expected update persisted")
	}
	if product.Price != 3999 {
		t.Fatalf("expected price updated, got %d", product.Price)
	}
	if product.Name != "Oak Shelf" || product.Stock != 12 {
		t.Fatalf("expected untouched fields kept, got %+v", product)
	}
	if !product.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt refreshed, got %v", product.UpdatedAt)
	}
	if !product.CreatedAt.Equal(existing.CreatedAt) {
		t.Fatalf("expected CreatedAt preserved, got %v", product.CreatedAt)
	}
}

func TestCatalogServiceUpdateProductRejectsEmptyName(t *testing.T) {
	repo := &stubProductRepo{
		findFn: func(_ context.Context, productID string) (domain.Product, error) {
			return domain.Product{ID: productID, Name: "Lamp", IsActive: true}, nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{Repository: repo})

	blank := "   "
	_, err := svc.UpdateProduct(context.Background(), UpdateProductCommand{ProductID: "prod-1", Name: &blank})
	if !errors.Is(err, ErrProductInvalidInput) {
		t.Fatalf("expected ErrProductInvalidInput, got %v", err)
	}
}

func TestCatalogServiceUpdateProductNotFound(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	name := "Lamp"
	_, err := svc.UpdateProduct(context.Background(), UpdateProductCommand{ProductID: "prod-missing", Name: &name})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogServiceDeleteProduct(t *testing.T) {
	deleted := ""
	repo := &stubProductRepo{
		findFn: func(_ context.Context, productID string) (domain.Product, error) {
			return domain.Product{ID: productID}, nil
		},
		deleteFn: func(_ context.Context, productID string) error {
			deleted = productID
			return nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{Repository: repo})

	if err := svc.DeleteProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if deleted != "prod-1" {
		t.Fatalf("expected prod-1 deleted, got %q", deleted)
	}

	if err := newTestCatalogService(t, CatalogServiceDeps{}).DeleteProduct(context.Background(), "prod-missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogServiceGetProductHidesInactive(t *testing.T) {
	repo := &stubProductRepo{
		findFn: func(_ context.Context, productID string) (domain.Product, error) {
			return domain.Product{ID: productID, Name: "Retired Lamp", IsActive: false}, nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{Repository: repo})

	if _, err := svc.GetProduct(context.Background(), "prod-1", false); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected inactive product hidden, got %v", err)
	}

	product, err := svc.GetProduct(context.Background(), "prod-1", true)
	if err != nil {
		t.Fatalf("expected admin read to pass, got %v", err)
	}
	if product.Name != "Retired Lamp" {
		t.Fatalf("unexpected product %+v", product)
	}
}

func TestCatalogServiceListProductsFilter(t *testing.T) {
	var captured repositories.ProductListFilter
	repo := &stubProductRepo{
		listFn: func(_ context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
			captured = filter
			return domain.CursorPage[domain.Product]{}, nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{Repository: repo})

	category := " Furniture "
	if _, err := svc.ListProducts(context.Background(), ProductListQuery{
		Category:   &category,
		Pagination: Pagination{PageSize: 25},
	}); err != nil {
		t.Fatalf("list products: %v", err)
	}
	if !captured.OnlyActive {
		t.Fatalf("expected OnlyActive set for public list")
	}
	if captured.Category == nil || *captured.Category != "furniture" {
		t.Fatalf("expected normalised category, got %v", captured.Category)
	}
	if captured.Pagination.PageSize != 25 {
		t.Fatalf("expected pagination forwarded, got %+v", captured.Pagination)
	}

	if _, err := svc.ListProducts(context.Background(), ProductListQuery{IncludeInactive: true}); err != nil {
		t.Fatalf("list products: %v", err)
	}
	if captured.OnlyActive {
		t.Fatalf("expected OnlyActive cleared for admin list")
	}
}

func TestCatalogServiceSearchProductsSubstring(t *testing.T) {
	catalog := []domain.Product{
		{ID: "prod-1", Name: "Walnut Desk", Description: "A desk", Category: "furniture", IsActive: true},
		{ID: "prod-2", Name: "Desk Lamp", Description: "Warm light", Category: "lighting", IsActive: true},
		{ID: "prod-3", Name: "Mug", Description: "Ceramic", Category: "kitchen", IsActive: true},
		{ID: "prod-4", Name: "Chair", Description: "Pairs with any desk", Category: "furniture", IsActive: true},
	}
	repo := &stubProductRepo{
		listFn: func(_ context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
			if !filter.OnlyActive {
				t.Fatalf("search must scan active products only")
			}
			return domain.CursorPage[domain.Product]{Items: catalog}, nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{Repository: repo})

	results, err := svc.SearchProducts(context.Background(), ProductSearchQuery{Term: "DESK"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(results))
	}
	if results[0].ID != "prod-1" || results[1].ID != "prod-2" || results[2].ID != "prod-4" {
		t.Fatalf("expected catalog-order matches, got %+v", results)
	}
}

func TestCatalogServiceSearchProductsHonoursLimit(t *testing.T) {
	items := make([]domain.Product, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, domain.Product{ID: "prod", Name: "Desk", IsActive: true})
	}
	repo := &stubProductRepo{
		listFn: func(_ context.Context, _ repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
			return domain.CursorPage[domain.Product]{Items: items}, nil
		},
	}
	svc := newTestCatalogService(t, CatalogServiceDeps{Repository: repo})

	results, err := svc.SearchProducts(context.Background(), ProductSearchQuery{Term: "desk", Limit: 4})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected limit respected, got %d", len(results))
	}
}

func TestCatalogServiceSearchProductsRequiresTerm(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	if _, err := svc.SearchProducts(context.Background(), ProductSearchQuery{Term: "   "}); !errors.Is(err, ErrProductInvalidInput) {
		t.Fatalf("expected ErrProductInvalidInput, got %v", err)
	}
}
