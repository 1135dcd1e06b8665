package domain

import (
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// Product represents a catalog entry. Price is stored in the smallest
// currency unit.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       int64
	Stock       int
	ImageURLs   []string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cart aggregates the mutable shopping cart state for a user. A user owns at
// most one cart; the cart document ID equals the user ID.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem stores a single product entry within a cart. UnitPrice is the
// catalog price snapshotted at the last add or update; reads never re-price.
type CartItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice int64
	AddedAt   time.Time
	UpdatedAt *time.Time
}

// Subtotal returns the line total for the item.
func (i CartItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// Total sums all line subtotals. An empty cart totals zero.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was created and awaits payment.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid indicates payment succeeded.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusShipped indicates the order has been handed to a carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order has been cancelled. Terminal.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// KnownOrderStatus reports whether s is one of the five lifecycle states.
func KnownOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order captures an immutable purchase record. Items, Total and
// ShippingAddress never change after creation; only Status and the
// cancellation fields do.
type Order struct {
	ID              string
	OrderNumber     string
	UserID          string
	Items           []OrderItem
	ShippingAddress Address
	Status          OrderStatus
	Total           int64
	PaymentMethod   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CancelledAt     *time.Time
	CancelReason    *string
}

// OrderItem mirrors a cart line at the time of purchase. UnitPrice is the
// catalog price frozen when the order was created.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice int64
	Subtotal  int64
}

// Address represents the postal address an order ships to. All fields are
// required.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// NotificationType distinguishes notification payload shapes.
type NotificationType string

const (
	// NotificationTypeOrderStatus marks order lifecycle notifications; Data
	// carries orderId and status.
	NotificationTypeOrderStatus NotificationType = "order_status"
)

// Notification is a per-user message persisted for in-app delivery.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]any
	Read      bool
	CreatedAt time.Time
}

// UserProfile captures the canonical projection of a Firebase Auth user.
type UserProfile struct {
	ID                string
	DisplayName       string
	Email             string
	PreferredLanguage string
	Roles             []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	Environment string
	GeneratedAt time.Time
}

// CursorPage packages list results with an encoded next token.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}
