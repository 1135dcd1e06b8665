package services

import (
	"context"
	"time"

	domain "github.com/shopfield/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination         = domain.Pagination
	Product            = domain.Product
	Cart               = domain.Cart
	CartItem           = domain.CartItem
	Order              = domain.Order
	OrderItem          = domain.OrderItem
	OrderStatus        = domain.OrderStatus
	Address            = domain.Address
	Notification       = domain.Notification
	NotificationType   = domain.NotificationType
	UserProfile        = domain.UserProfile
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogService manages the product catalog. Reads serve the storefront;
// mutations are admin-only and gated at the handler boundary.
type CatalogService interface {
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string, includeInactive bool) (Product, error)
	ListProducts(ctx context.Context, query ProductListQuery) (domain.CursorPage[Product], error)
	SearchProducts(ctx context.Context, query ProductSearchQuery) ([]Product, error)
}

// CartService manages the per-user cart aggregate.
type CartService interface {
	GetOrCreateCart(ctx context.Context, userID string) (Cart, error)
	AddItem(ctx context.Context, cmd AddCartItemCommand) (Cart, error)
	UpdateItem(ctx context.Context, cmd UpdateCartItemCommand) (Cart, error)
	RemoveItem(ctx context.Context, userID string, productID string) (Cart, error)
	ClearCart(ctx context.Context, userID string) (Cart, error)
	Total(ctx context.Context, userID string) (int64, error)
}

// OrderService owns order creation and the status lifecycle.
type OrderService interface {
	CreateFromCart(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error)
	GetOrder(ctx context.Context, query GetOrderQuery) (Order, error)
	ListByUser(ctx context.Context, query OrderListQuery) (domain.CursorPage[Order], error)
	UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (UpdateOrderStatusResult, error)
	Cancel(ctx context.Context, cmd CancelOrderCommand) (Order, error)
}

// NotificationService persists and serves per-user notifications.
type NotificationService interface {
	Notify(ctx context.Context, cmd NotifyCommand) (Notification, error)
	ListForUser(ctx context.Context, query NotificationListQuery) (domain.CursorPage[Notification], error)
	MarkRead(ctx context.Context, userID string, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// UserService serves the authenticated user's profile.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (UserProfile, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error)
}

// SystemService aggregates dependency health for readiness probes.
type SystemService interface {
	Health(ctx context.Context) (SystemHealthReport, error)
}

// OrderEventPublisher emits order lifecycle events to downstream consumers.
// Publishing is best effort; callers log failures and move on.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, message OrderEventMessage) (string, error)
}

// OrderEventMessage is the payload published for order lifecycle changes.
type OrderEventMessage struct {
	Event      string    `json:"event"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Catalog commands/queries -------------------------------------------------

type CreateProductCommand struct {
	Name        string
	Description string
	Category    string
	Price       int64
	Stock       int
	ImageURLs   []string
	IsActive    *bool
}

type UpdateProductCommand struct {
	ProductID   string
	Name        *string
	Description *string
	Category    *string
	Price       *int64
	Stock       *int
	ImageURLs   []string
	IsActive    *bool
}

type ProductListQuery struct {
	Category        *string
	IncludeInactive bool
	Pagination      Pagination
}

type ProductSearchQuery struct {
	Term  string
	Limit int
}

// Cart commands ------------------------------------------------------------

type AddCartItemCommand struct {
	UserID    string
	ProductID string
	Quantity  int
}

type UpdateCartItemCommand struct {
	UserID    string
	ProductID string
	Quantity  int
}

// Order commands/queries ---------------------------------------------------

type CreateOrderCommand struct {
	UserID          string
	ShippingAddress Address
	PaymentMethod   string
}

// CreateOrderResult carries the committed order plus the secondary outcome of
// the post-commit cart clear. A non-nil CartClearErr means the order stands
// but the cart still holds its lines.
type CreateOrderResult struct {
	Order        Order
	CartClearErr error
}

type GetOrderQuery struct {
	OrderID string
	UserID  string
	IsAdmin bool
}

type OrderListQuery struct {
	UserID     string
	Status     []string
	Pagination Pagination
}

type UpdateOrderStatusCommand struct {
	OrderID string
	Status  string
}

// UpdateOrderStatusResult carries the updated order plus the secondary outcome
// of the owner notification. A non-nil NotifyErr means the status change is
// committed but the owner was not notified.
type UpdateOrderStatusResult struct {
	Order     Order
	NotifyErr error
}

type CancelOrderCommand struct {
	OrderID string
	UserID  string
	IsAdmin bool
	Reason  string
}

// Notification commands/queries --------------------------------------------

type NotifyCommand struct {
	UserID  string
	Type    NotificationType
	Title   string
	Message string
	Data    map[string]any
}

type NotificationListQuery struct {
	UserID     string
	UnreadOnly bool
	Pagination Pagination
}

// User commands ------------------------------------------------------------

type UpdateProfileCommand struct {
	UserID            string
	DisplayName       *string
	PreferredLanguage *string
}
