package handlers

import (
	"context"

	domain "github.com/shopfield/api/internal/domain"
	"github.com/shopfield/api/internal/services"
)

type stubCatalogService struct {
	createFn func(ctx context.Context, cmd services.CreateProductCommand) (services.Product, error)
	updateFn func(ctx context.Context, cmd services.UpdateProductCommand) (services.Product, error)
	deleteFn func(ctx context.Context, productID string) error
	getFn    func(ctx context.Context, productID string, includeInactive bool) (services.Product, error)
	listFn   func(ctx context.Context, query services.ProductListQuery) (domain.CursorPage[services.Product], error)
	searchFn func(ctx context.Context, query services.ProductSearchQuery) ([]services.Product, error)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, cmd services.CreateProductCommand) (services.Product, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return services.Product{}, nil
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, cmd services.UpdateProductCommand) (services.Product, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, cmd)
	}
	return services.Product{}, nil
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string, includeInactive bool) (services.Product, error) {
	if s.getFn != nil {
		return s.getFn(ctx, productID, includeInactive)
	}
	return services.Product{}, services.ErrProductNotFound
}

func (s *stubCatalogService) ListProducts(ctx context.Context, query services.ProductListQuery) (domain.CursorPage[services.Product], error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return domain.CursorPage[services.Product]{}, nil
}

func (s *stubCatalogService) SearchProducts(ctx context.Context, query services.ProductSearchQuery) ([]services.Product, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query)
	}
	return nil, nil
}

type stubCartService struct {
	getOrCreateFn func(ctx context.Context, userID string) (services.Cart, error)
	addFn         func(ctx context.Context, cmd services.AddCartItemCommand) (services.Cart, error)
	updateFn      func(ctx context.Context, cmd services.UpdateCartItemCommand) (services.Cart, error)
	removeFn      func(ctx context.Context, userID string, productID string) (services.Cart, error)
	clearFn       func(ctx context.Context, userID string) (services.Cart, error)
	totalFn       func(ctx context.Context, userID string) (int64, error)
}

func (s *stubCartService) GetOrCreateCart(ctx context.Context, userID string) (services.Cart, error) {
	if s.getOrCreateFn != nil {
		return s.getOrCreateFn(ctx, userID)
	}
	return services.Cart{ID: userID, UserID: userID}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddCartItemCommand) (services.Cart, error) {
	if s.addFn != nil {
		return s.addFn(ctx, cmd)
	}
	return services.Cart{}, nil
}

func (s *stubCartService) UpdateItem(ctx context.Context, cmd services.UpdateCartItemCommand) (services.Cart, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, cmd)
	}
	return services.Cart{}, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID string, productID string) (services.Cart, error) {
	if s.removeFn != nil {
		return s.removeFn(ctx, userID, productID)
	}
	return services.Cart{}, nil
}

func (s *stubCartService) ClearCart(ctx context.Context, userID string) (services.Cart, error) {
	if s.clearFn != nil {
		return s.clearFn(ctx, userID)
	}
	return services.Cart{}, nil
}

func (s *stubCartService) Total(ctx context.Context, userID string) (int64, error) {
	if s.totalFn != nil {
		return s.totalFn(ctx, userID)
	}
	return 0, nil
}

type stubOrderService struct {
	createFn func(ctx context.Context, cmd services.CreateOrderCommand) (services.CreateOrderResult, error)
	getFn    func(ctx context.Context, query services.GetOrderQuery) (services.Order, error)
	listFn   func(ctx context.Context, query services.OrderListQuery) (domain.CursorPage[services.Order], error)
	statusFn func(ctx context.Context, cmd services.UpdateOrderStatusCommand) (services.UpdateOrderStatusResult, error)
	cancelFn func(ctx context.Context, cmd services.CancelOrderCommand) (services.Order, error)
}

func (s *stubOrderService) CreateFromCart(ctx context.Context, cmd services.CreateOrderCommand) (services.CreateOrderResult, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return services.CreateOrderResult{}, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, query services.GetOrderQuery) (services.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, query)
	}
	return services.Order{}, services.ErrOrderNotFound
}

func (s *stubOrderService) ListByUser(ctx context.Context, query services.OrderListQuery) (domain.CursorPage[services.Order], error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return domain.CursorPage[services.Order]{}, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, cmd services.UpdateOrderStatusCommand) (services.UpdateOrderStatusResult, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, cmd)
	}
	return services.UpdateOrderStatusResult{}, nil
}

func (s *stubOrderService) Cancel(ctx context.Context, cmd services.CancelOrderCommand) (services.Order, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, cmd)
	}
	return services.Order{}, nil
}

type stubNotificationService struct {
	notifyFn  func(ctx context.Context, cmd services.NotifyCommand) (services.Notification, error)
	listFn    func(ctx context.Context, query services.NotificationListQuery) (domain.CursorPage[services.Notification], error)
	markFn    func(ctx context.Context, userID string, notificationID string) error
	markAllFn func(ctx context.Context, userID string) (int, error)
}

func (s *stubNotificationService) Notify(ctx context.Context, cmd services.NotifyCommand) (services.Notification, error) {
	if s.notifyFn != nil {
		return s.notifyFn(ctx, cmd)
	}
	return services.Notification{}, nil
}

func (s *stubNotificationService) ListForUser(ctx context.Context, query services.NotificationListQuery) (domain.CursorPage[services.Notification], error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return domain.CursorPage[services.Notification]{}, nil
}

func (s *stubNotificationService) MarkRead(ctx context.Context, userID string, notificationID string) error {
	if s.markFn != nil {
		return s.markFn(ctx, userID, notificationID)
	}
	return nil
}

func (s *stubNotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if s.markAllFn != nil {
		return s.markAllFn(ctx, userID)
	}
	return 0, nil
}

type stubUserService struct {
	getFn    func(ctx context.Context, userID string) (services.UserProfile, error)
	updateFn func(ctx context.Context, cmd services.UpdateProfileCommand) (services.UserProfile, error)
}

func (s *stubUserService) GetProfile(ctx context.Context, userID string) (services.UserProfile, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID)
	}
	return services.UserProfile{}, services.ErrUserNotFound
}

func (s *stubUserService) UpdateProfile(ctx context.Context, cmd services.UpdateProfileCommand) (services.UserProfile, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, cmd)
	}
	return services.UserProfile{}, nil
}

type stubSystemService struct {
	report services.SystemHealthReport
	err    error
}

func (s *stubSystemService) Health(context.Context) (services.SystemHealthReport, error) {
	return s.report, s.err
}
