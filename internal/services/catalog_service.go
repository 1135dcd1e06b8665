package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/shopfield/api/internal/domain"
	"github.com/shopfield/api/internal/repositories"
)

var (
	errCatalogRepositoryRequired = errors.New("catalog service: repository is required")
	errCatalogClockRequired      = errors.New("catalog service: clock is required")
)

// ErrProductInvalidInput indicates the caller supplied invalid product data.
var ErrProductInvalidInput = errors.New("catalog service: invalid input")

// ErrProductNotFound indicates the requested product does not exist.
var ErrProductNotFound = errors.New("catalog service: product not found")

// ErrProductConflict indicates the product could not be written due to a concurrent change.
var ErrProductConflict = errors.New("catalog service: conflict")

// ErrCatalogUnavailable indicates the catalog backend cannot fulfil the request.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

const (
	maxProductNameLength        = 200
	maxProductDescriptionLength = 5000
	defaultSearchScanLimit      = 500
)

// CatalogServiceDeps wires the repository and ambient dependencies for catalog operations.
type CatalogServiceDeps struct {
	Repository  repositories.ProductRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type catalogService struct {
	repo   repositories.ProductRepository
	now    func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errCatalogRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCatalogClockRequired
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return "prod_" + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		newID:  idGen,
		logger: logger,
	}, nil
}

// CreateProduct validates and stores a new catalog entry.
func (s *catalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error) {
	if s == nil || s.repo == nil {
		return Product{}, ErrCatalogUnavailable
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrProductInvalidInput)
	}
	if len(name) > maxProductNameLength {
		return Product{}, fmt.Errorf("%w: name must be %d characters or fewer", ErrProductInvalidInput, maxProductNameLength)
	}
	if len(cmd.Description) > maxProductDescriptionLength {
		return Product{}, fmt.Errorf("%w: description must be %d characters or fewer", ErrProductInvalidInput, maxProductDescriptionLength)
	}
	if cmd.Price < 0 {
		return Product{}, fmt.Errorf("%w: price must not be negative", ErrProductInvalidInput)
	}
	if cmd.Stock < 0 {
		return Product{}, fmt.Errorf("%w: stock must not be negative", ErrProductInvalidInput)
	}

	now := s.now()
	product := domain.Product{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		Category:    strings.ToLower(strings.TrimSpace(cmd.Category)),
		Price:       cmd.Price,
		Stock:       cmd.Stock,
		ImageURLs:   trimStrings(cmd.ImageURLs),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cmd.IsActive != nil {
		product.IsActive = *cmd.IsActive
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		return Product{}, s.translateRepoError(err)
	}

	s.logger(ctx, "catalog.product_created", map[string]any{
		"productID": product.ID,
		"category":  product.Category,
	})
	return product, nil
}

// UpdateProduct applies a partial update to an existing catalog entry.
func (s *catalogService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (Product, error) {
	if s == nil || s.repo == nil {
		return Product{}, ErrCatalogUnavailable
	}

	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return Product{}, s.translateRepoError(err)
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return Product{}, fmt.Errorf("%w: name must not be empty", ErrProductInvalidInput)
		}
		if len(name) > maxProductNameLength {
			return Product{}, fmt.Errorf("%w: name must be %d characters or fewer", ErrProductInvalidInput, maxProductNameLength)
		}
		product.Name = name
	}
	if cmd.Description != nil {
		if len(*cmd.Description) > maxProductDescriptionLength {
			return Product{}, fmt.Errorf("%w: description must be %d characters or fewer", ErrProductInvalidInput, maxProductDescriptionLength)
		}
		product.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Category != nil {
		product.Category = strings.ToLower(strings.TrimSpace(*cmd.Category))
	}
	if cmd.Price != nil {
		if *cmd.Price < 0 {
			return Product{}, fmt.Errorf("%w: price must not be negative", ErrProductInvalidInput)
		}
		product.Price = *cmd.Price
	}
	if cmd.Stock != nil {
		if *cmd.Stock < 0 {
			return Product{}, fmt.Errorf("%w: stock must not be negative", ErrProductInvalidInput)
		}
		product.Stock = *cmd.Stock
	}
	if cmd.ImageURLs != nil {
		product.ImageURLs = trimStrings(cmd.ImageURLs)
	}
	if cmd.IsActive != nil {
		product.IsActive = *cmd.IsActive
	}

	product.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, s.translateRepoError(err)
	}
	return product, nil
}

// DeleteProduct removes a catalog entry. Existing cart lines and orders keep
// their frozen snapshots.
func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	if s == nil || s.repo == nil {
		return ErrCatalogUnavailable
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}

	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		return s.translateRepoError(err)
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return s.translateRepoError(err)
	}

	s.logger(ctx, "catalog.product_deleted", map[string]any{"productID": productID})
	return nil
}

// GetProduct fetches a single product. Inactive products stay hidden unless
// includeInactive is set (admin reads).
func (s *catalogService) GetProduct(ctx context.Context, productID string, includeInactive bool) (Product, error) {
	if s == nil || s.repo == nil {
		return Product{}, ErrCatalogUnavailable
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return Product{}, s.translateRepoError(err)
	}
	if !product.IsActive && !includeInactive {
		return Product{}, ErrProductNotFound
	}
	return product, nil
}

// ListProducts returns catalog pages ordered newest first.
func (s *catalogService) ListProducts(ctx context.Context, query ProductListQuery) (domain.CursorPage[Product], error) {
	if s == nil || s.repo == nil {
		return domain.CursorPage[Product]{}, ErrCatalogUnavailable
	}

	filter := repositories.ProductListFilter{
		OnlyActive: !query.IncludeInactive,
		Pagination: query.Pagination,
	}
	if query.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*query.Category))
		if category != "" {
			filter.Category = &category
		}
	}

	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return domain.CursorPage[Product]{}, s.translateRepoError(err)
	}
	return page, nil
}

// SearchProducts matches the term as a case-insensitive substring over name,
// description, and category. The scan is bounded and unranked; matches come
// back in catalog order.
func (s *catalogService) SearchProducts(ctx context.Context, query ProductSearchQuery) ([]Product, error) {
	if s == nil || s.repo == nil {
		return nil, ErrCatalogUnavailable
	}

	term := strings.ToLower(strings.TrimSpace(query.Term))
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrProductInvalidInput)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	matches := make([]Product, 0, limit)
	scanned := 0
	pageToken := ""
	for scanned < defaultSearchScanLimit && len(matches) < limit {
		page, err := s.repo.List(ctx, repositories.ProductListFilter{
			OnlyActive: true,
			Pagination: domain.Pagination{PageSize: 100, PageToken: pageToken},
		})
		if err != nil {
			return nil, s.translateRepoError(err)
		}
		for _, product := range page.Items {
			scanned++
			if productMatchesTerm(product, term) {
				matches = append(matches, product)
				if len(matches) == limit {
					break
				}
			}
		}
		if page.NextPageToken == "" || len(page.Items) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}
	return matches, nil
}

func productMatchesTerm(product Product, term string) bool {
	return strings.Contains(strings.ToLower(product.Name), term) ||
		strings.Contains(strings.ToLower(product.Description), term) ||
		strings.Contains(strings.ToLower(product.Category), term)
}

func trimStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *catalogService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrProductNotFound
		case repoErr.IsConflict():
			return ErrProductConflict
		case repoErr.IsUnavailable():
			return ErrCatalogUnavailable
		}
	}
	return ErrCatalogUnavailable
}
