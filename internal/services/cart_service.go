package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/shopfield/api/internal/domain"
	"github.com/shopfield/api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartCatalogRequired    = errors.New("cart service: catalog is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartNotFound indicates the requested cart or cart line does not exist.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartConflict indicates the cart changed concurrently and the write was rejected.
var ErrCartConflict = errors.New("cart service: conflict")

// ErrCartUnavailable indicates the cart backend cannot fulfil the request.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// ErrInsufficientStock indicates the requested quantity exceeds the product's stock.
var ErrInsufficientStock = errors.New("cart service: insufficient stock")

const maxCartLineQuantity = 999

type productFinder interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
}

// CartServiceDeps wires the repositories and ambient dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Catalog    productFinder
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo    repositories.CartRepository
	catalog productFinder
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Catalog == nil {
		return nil, errCartCatalogRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		now:     func() time.Time { return deps.Clock().UTC() },
		logger:  logger,
	}, nil
}

// GetOrCreateCart loads the cart for the user, lazily persisting an empty
// cart when absent. It never fails for a valid user ID short of backend
// trouble.
func (s *cartService) GetOrCreateCart(ctx context.Context, userID string) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		if !isRepoNotFound(err) {
			return Cart{}, s.translateRepoError(err)
		}
		saved, err := s.repo.UpsertCart(ctx, s.newCart(uid))
		if err != nil {
			return Cart{}, s.translateRepoError(err)
		}
		cart = saved
	}
	return cart, nil
}

// AddItem merges the product into the cart: an existing line gets its
// quantity incremented and its snapshot refreshed to the current catalog
// values, otherwise a new line is appended.
func (s *cartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	uid := strings.TrimSpace(cmd.UserID)
	productID := strings.TrimSpace(cmd.ProductID)
	if uid == "" || productID == "" {
		return Cart{}, ErrCartInvalidInput
	}
	if cmd.Quantity < 1 || cmd.Quantity > maxCartLineQuantity {
		return Cart{}, fmt.Errorf("%w: quantity must be between 1 and %d", ErrCartInvalidInput, maxCartLineQuantity)
	}

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	// The stock gate covers the requested increment only; the cumulative
	// line quantity may still exceed stock when called repeatedly.
	if cmd.Quantity > product.Stock {
		return Cart{}, fmt.Errorf("%w: requested %d of %q, %d in stock", ErrInsufficientStock, cmd.Quantity, product.ID, product.Stock)
	}

	cart, err := s.GetOrCreateCart(ctx, uid)
	if err != nil {
		return Cart{}, err
	}

	now := s.now()
	items := cloneCartItems(cart.Items)
	if idx := indexOfCartItem(items, productID); idx >= 0 {
		items[idx].Quantity += cmd.Quantity
		items[idx].Name = product.Name
		items[idx].UnitPrice = product.Price
		updated := now
		items[idx].UpdatedAt = &updated
	} else {
		items = append(items, domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  cmd.Quantity,
			UnitPrice: product.Price,
			AddedAt:   now,
		})
	}

	saved, err := s.repo.ReplaceItems(ctx, uid, items, expectedCartUpdate(cart))
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

// UpdateItem overwrites the line quantity and refreshes the price snapshot.
func (s *cartService) UpdateItem(ctx context.Context, cmd UpdateCartItemCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	uid := strings.TrimSpace(cmd.UserID)
	productID := strings.TrimSpace(cmd.ProductID)
	if uid == "" || productID == "" {
		return Cart{}, ErrCartInvalidInput
	}
	if cmd.Quantity < 1 || cmd.Quantity > maxCartLineQuantity {
		return Cart{}, fmt.Errorf("%w: quantity must be between 1 and %d", ErrCartInvalidInput, maxCartLineQuantity)
	}

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if cmd.Quantity > product.Stock {
		return Cart{}, fmt.Errorf("%w: requested %d of %q, %d in stock", ErrInsufficientStock, cmd.Quantity, product.ID, product.Stock)
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}

	items := cloneCartItems(cart.Items)
	idx := indexOfCartItem(items, productID)
	if idx < 0 {
		return Cart{}, ErrCartNotFound
	}

	now := s.now()
	items[idx].Quantity = cmd.Quantity
	items[idx].Name = product.Name
	items[idx].UnitPrice = product.Price
	items[idx].UpdatedAt = &now

	saved, err := s.repo.ReplaceItems(ctx, uid, items, expectedCartUpdate(cart))
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

// RemoveItem filters the line out of the cart. Removing an absent line is a
// no-op.
func (s *cartService) RemoveItem(ctx context.Context, userID string, productID string) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}

	items := cloneCartItems(cart.Items)
	idx := indexOfCartItem(items, pid)
	if idx < 0 {
		return cart, nil
	}
	items = append(items[:idx], items[idx+1:]...)

	saved, err := s.repo.ReplaceItems(ctx, uid, items, expectedCartUpdate(cart))
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

// ClearCart empties the line list. Clearing a missing cart is a NotFound.
func (s *cartService) ClearCart(ctx context.Context, userID string) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}

	saved, err := s.repo.ReplaceItems(ctx, uid, nil, expectedCartUpdate(cart))
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

// Total sums quantity times unit price over the cart lines. A missing cart
// totals to zero.
func (s *cartService) Total(ctx context.Context, userID string) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, ErrCartUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return 0, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		if isRepoNotFound(err) {
			return 0, nil
		}
		return 0, s.translateRepoError(err)
	}
	return cart.Total(), nil
}

func (s *cartService) newCart(userID string) domain.Cart {
	now := s.now()
	return domain.Cart{
		ID:        userID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *cartService) lookupProduct(ctx context.Context, productID string) (domain.Product, error) {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Product{}, fmt.Errorf("%w: product %q", ErrCartNotFound, productID)
		}
		return domain.Product{}, s.translateRepoError(err)
	}
	if !product.IsActive {
		return domain.Product{}, fmt.Errorf("%w: product %q", ErrCartNotFound, productID)
	}
	return product, nil
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCartNotFound
		case repoErr.IsConflict():
			return ErrCartConflict
		case repoErr.IsUnavailable():
			return ErrCartUnavailable
		}
	}
	return ErrCartUnavailable
}

func expectedCartUpdate(cart domain.Cart) *time.Time {
	if cart.UpdatedAt.IsZero() {
		return nil
	}
	ts := cart.UpdatedAt.UTC()
	return &ts
}

func cloneCartItems(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return nil
	}
	dup := make([]domain.CartItem, len(items))
	copy(dup, items)
	return dup
}

func indexOfCartItem(items []domain.CartItem, productID string) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
