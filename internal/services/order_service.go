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
	errOrderRepositoryRequired = errors.New("order service: order repository is required")
	errOrderCartsRequired      = errors.New("order service: cart repository is required")
	errOrderCatalogRequired    = errors.New("order service: catalog is required")
	errOrderCountersRequired   = errors.New("order service: counter repository is required")
	errOrderClockRequired      = errors.New("order service: clock is required")
)

// ErrOrderInvalidInput indicates the caller supplied invalid order data.
var ErrOrderInvalidInput = errors.New("order service: invalid input")

// ErrOrderNotFound indicates the requested order does not exist.
var ErrOrderNotFound = errors.New("order service: not found")

// ErrOrderEmptyCart indicates order creation was attempted with no cart lines.
var ErrOrderEmptyCart = errors.New("order service: cart is empty")

// ErrOrderInvalidTransition indicates the requested status change violates the lifecycle.
var ErrOrderInvalidTransition = errors.New("order service: invalid status transition")

// ErrOrderForbidden indicates the caller may not act on this order.
var ErrOrderForbidden = errors.New("order service: forbidden")

// ErrOrderConflict indicates the order changed concurrently and the write was rejected.
var ErrOrderConflict = errors.New("order service: conflict")

// ErrOrderUnavailable indicates the order backend cannot fulfil the request.
var ErrOrderUnavailable = errors.New("order service: unavailable")

const (
	defaultPaymentMethod = "none"

	orderNumberPrefix     = "SF"
	orderNumberCounterFmt = "order-number:%d"

	eventOrderCreated       = "order.created"
	eventOrderStatusChanged = "order.status.changed"
)

// OrderServiceDeps wires the repositories and collaborators for order operations.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Carts       repositories.CartRepository
	Catalog     productFinder
	Counters    repositories.CounterRepository
	Notifier    NotificationService
	Publisher   OrderEventPublisher
	UnitOfWork  repositories.UnitOfWork
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type orderService struct {
	orders    repositories.OrderRepository
	carts     repositories.CartRepository
	catalog   productFinder
	counters  repositories.CounterRepository
	notifier  NotificationService
	publisher OrderEventPublisher
	uow       repositories.UnitOfWork
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

// NewOrderService constructs an OrderService enforcing dependency validation.
// Notifier, Publisher, and UnitOfWork are optional collaborators.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errOrderRepositoryRequired
	}
	if deps.Carts == nil {
		return nil, errOrderCartsRequired
	}
	if deps.Catalog == nil {
		return nil, errOrderCatalogRequired
	}
	if deps.Counters == nil {
		return nil, errOrderCountersRequired
	}
	if deps.Clock == nil {
		return nil, errOrderClockRequired
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return "ord_" + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders:    deps.Orders,
		carts:     deps.Carts,
		catalog:   deps.Catalog,
		counters:  deps.Counters,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		uow:       deps.UnitOfWork,
		now:       func() time.Time { return deps.Clock().UTC() },
		newID:     idGen,
		logger:    logger,
	}, nil
}

// CreateFromCart turns the user's cart into a pending order. Line prices are
// frozen from the live catalog at creation time, not from the cart snapshot.
// The cart clear runs after the order commit with a last-update-time
// precondition captured at read; a clear failure leaves the order standing
// and is surfaced on the result.
func (s *orderService) CreateFromCart(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if s == nil || s.orders == nil {
		return CreateOrderResult{}, ErrOrderUnavailable
	}

	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return CreateOrderResult{}, ErrOrderInvalidInput
	}
	if err := validateAddress(cmd.ShippingAddress); err != nil {
		return CreateOrderResult{}, err
	}

	cart, err := s.carts.GetCart(ctx, uid)
	if err != nil {
		if isRepoNotFound(err) {
			return CreateOrderResult{}, ErrOrderEmptyCart
		}
		return CreateOrderResult{}, s.translateRepoError(err)
	}
	if cart.IsEmpty() {
		return CreateOrderResult{}, ErrOrderEmptyCart
	}
	cartReadAt := expectedCartUpdate(cart)

	now := s.now()
	items := make([]domain.OrderItem, 0, len(cart.Items))
	var total int64
	for _, line := range cart.Items {
		if line.Quantity < 1 {
			return CreateOrderResult{}, fmt.Errorf("%w: line %q has non-positive quantity", ErrOrderInvalidInput, line.ProductID)
		}
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			if isRepoNotFound(err) {
				return CreateOrderResult{}, fmt.Errorf("%w: product %q no longer available", ErrOrderInvalidInput, line.ProductID)
			}
			return CreateOrderResult{}, s.translateRepoError(err)
		}
		item := domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  product.Price * int64(line.Quantity),
		}
		items = append(items, item)
		total += item.Subtotal
	}

	orderNumber, err := s.nextOrderNumber(ctx, now)
	if err != nil {
		return CreateOrderResult{}, err
	}

	paymentMethod := strings.TrimSpace(cmd.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	order := domain.Order{
		ID:          s.newID(),
		OrderNumber: orderNumber,
		UserID:      uid,
		Items:       items,
		ShippingAddress: domain.Address{
			Street:  strings.TrimSpace(cmd.ShippingAddress.Street),
			City:    strings.TrimSpace(cmd.ShippingAddress.City),
			State:   strings.TrimSpace(cmd.ShippingAddress.State),
			ZipCode: strings.TrimSpace(cmd.ShippingAddress.ZipCode),
			Country: strings.TrimSpace(cmd.ShippingAddress.Country),
		},
		Status:        domain.OrderStatusPending,
		Total:         total,
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	insert := func(ctx context.Context) error {
		return s.orders.Insert(ctx, order)
	}
	if s.uow != nil {
		err = s.uow.RunInTx(ctx, insert)
	} else {
		err = insert(ctx)
	}
	if err != nil {
		return CreateOrderResult{}, s.translateRepoError(err)
	}

	result := CreateOrderResult{Order: order}

	// The order stands even when the clear loses the CAS race; the caller
	// learns about the stale cart through CartClearErr.
	if err := s.carts.Clear(ctx, uid, cartReadAt); err != nil {
		translated := s.translateRepoError(err)
		result.CartClearErr = translated
		s.logger(ctx, "order.cart_clear_failed", map[string]any{
			"orderID": order.ID,
			"userID":  uid,
			"error":   err.Error(),
		})
	}

	s.publish(ctx, eventOrderCreated, order)

	return result, nil
}

// GetOrder fetches a single order, hiding other users' orders from non-admins.
func (s *orderService) GetOrder(ctx context.Context, query GetOrderQuery) (Order, error) {
	if s == nil || s.orders == nil {
		return Order{}, ErrOrderUnavailable
	}
	orderID := strings.TrimSpace(query.OrderID)
	if orderID == "" {
		return Order{}, ErrOrderInvalidInput
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.translateRepoError(err)
	}
	if !query.IsAdmin && order.UserID != strings.TrimSpace(query.UserID) {
		return Order{}, ErrOrderForbidden
	}
	return order, nil
}

// ListByUser returns the user's orders newest first.
func (s *orderService) ListByUser(ctx context.Context, query OrderListQuery) (domain.CursorPage[Order], error) {
	if s == nil || s.orders == nil {
		return domain.CursorPage[Order]{}, ErrOrderUnavailable
	}
	uid := strings.TrimSpace(query.UserID)
	if uid == "" {
		return domain.CursorPage[Order]{}, ErrOrderInvalidInput
	}

	page, err := s.orders.List(ctx, repositories.OrderListFilter{
		UserID:     uid,
		Status:     query.Status,
		Pagination: query.Pagination,
	})
	if err != nil {
		return domain.CursorPage[Order]{}, s.translateRepoError(err)
	}
	return page, nil
}

// UpdateStatus moves the order through its lifecycle. Transition legality
// lives here; WHO may request which status is the handler's concern. The
// owner is notified after the persist; a notification failure never rolls
// the status change back.
func (s *orderService) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (UpdateOrderStatusResult, error) {
	if s == nil || s.orders == nil {
		return UpdateOrderStatusResult{}, ErrOrderUnavailable
	}

	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return UpdateOrderStatusResult{}, ErrOrderInvalidInput
	}
	next := domain.OrderStatus(strings.ToLower(strings.TrimSpace(cmd.Status)))
	if !domain.KnownOrderStatus(next) {
		return UpdateOrderStatusResult{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Status)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return UpdateOrderStatusResult{}, s.translateRepoError(err)
	}

	if err := validateTransition(order.Status, next); err != nil {
		return UpdateOrderStatusResult{}, err
	}

	now := s.now()
	order.Status = next
	order.UpdatedAt = now
	if next == domain.OrderStatusCancelled && order.CancelledAt == nil {
		cancelledAt := now
		order.CancelledAt = &cancelledAt
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return UpdateOrderStatusResult{}, s.translateRepoError(err)
	}

	result := UpdateOrderStatusResult{Order: order}
	result.NotifyErr = s.notifyStatusChange(ctx, order)

	s.publish(ctx, eventOrderStatusChanged, order)

	return result, nil
}

// Cancel is the privileged escape hatch: it forces the order to cancelled
// from any state, bypassing the transition guard, after an owner-or-admin
// check. Cancelling an already cancelled order is a no-op.
func (s *orderService) Cancel(ctx context.Context, cmd CancelOrderCommand) (Order, error) {
	if s == nil || s.orders == nil {
		return Order{}, ErrOrderUnavailable
	}

	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return Order{}, ErrOrderInvalidInput
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.translateRepoError(err)
	}
	if !cmd.IsAdmin && order.UserID != strings.TrimSpace(cmd.UserID) {
		return Order{}, ErrOrderForbidden
	}
	if order.Status == domain.OrderStatusCancelled {
		return order, nil
	}

	now := s.now()
	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = now
	order.CancelledAt = &now
	if reason := strings.TrimSpace(cmd.Reason); reason != "" {
		order.CancelReason = &reason
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return Order{}, s.translateRepoError(err)
	}

	s.publish(ctx, eventOrderStatusChanged, order)

	return order, nil
}

func (s *orderService) nextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	seq, err := s.counters.Next(ctx, fmt.Sprintf(orderNumberCounterFmt, year), 1)
	if err != nil {
		var counterErr *repositories.CounterError
		if errors.As(err, &counterErr) {
			return "", fmt.Errorf("%w: %s", ErrOrderUnavailable, counterErr.Message)
		}
		return "", s.translateRepoError(err)
	}
	return fmt.Sprintf("%s-%d-%06d", orderNumberPrefix, year, seq), nil
}

func (s *orderService) notifyStatusChange(ctx context.Context, order domain.Order) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.Notify(ctx, NotifyCommand{
		UserID:  order.UserID,
		Type:    domain.NotificationTypeOrderStatus,
		Title:   "Order update",
		Message: fmt.Sprintf("Order %s is now %s", order.OrderNumber, order.Status),
		Data: map[string]any{
			"orderId": order.ID,
			"status":  string(order.Status),
		},
	})
	if err != nil {
		s.logger(ctx, "order.notify_failed", map[string]any{
			"orderID": order.ID,
			"userID":  order.UserID,
			"error":   err.Error(),
		})
	}
	return err
}

func (s *orderService) publish(ctx context.Context, event string, order domain.Order) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.PublishOrderEvent(ctx, OrderEventMessage{
		Event:      event,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		OccurredAt: s.now(),
	}); err != nil {
		s.logger(ctx, "order.event_publish_failed", map[string]any{
			"orderID": order.ID,
			"event":   event,
			"error":   err.Error(),
		})
	}
}

// validateTransition enforces the lifecycle guard: cancelled is terminal and
// delivered only admits the post-delivery cancellation.
func validateTransition(current, next domain.OrderStatus) error {
	switch current {
	case domain.OrderStatusCancelled:
		return fmt.Errorf("%w: order is cancelled", ErrOrderInvalidTransition)
	case domain.OrderStatusDelivered:
		if next != domain.OrderStatusCancelled {
			return fmt.Errorf("%w: delivered order may only be cancelled", ErrOrderInvalidTransition)
		}
	}
	return nil
}

func validateAddress(addr Address) error {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(addr.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(addr.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(addr.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(addr.ZipCode) == "" {
		missing = append(missing, "zipCode")
	}
	if strings.TrimSpace(addr.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: shipping address missing %s", ErrOrderInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

func (s *orderService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrOrderNotFound
		case repoErr.IsConflict():
			return ErrOrderConflict
		case repoErr.IsUnavailable():
			return ErrOrderUnavailable
		}
	}
	return ErrOrderUnavailable
}
