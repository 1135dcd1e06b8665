package services

import (
	"context"
	"time"

	domain "github.com/shopfield/api/internal/domain"
	"github.com/shopfield/api/internal/repositories"
)

// repoError simulates categorised persistence failures in tests.
type repoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
	msg         string
}

func (e *repoError) Error() string       { return e.msg }
func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return e.conflict }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

var (
	errStubNotFound    = &repoError{notFound: true, msg: "stub: not found"}
	errStubConflict    = &repoError{conflict: true, msg: "stub: conflict"}
	errStubUnavailable = &repoError{unavailable: true, msg: "stub: unavailable"}
)

type stubProductRepo struct {
	insertFn func(ctx context.Context, product domain.Product) error
	updateFn func(ctx context.Context, product domain.Product) error
	deleteFn func(ctx context.Context, productID string) error
	findFn   func(ctx context.Context, productID string) (domain.Product, error)
	listFn   func(ctx context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error)
}

func (s *stubProductRepo) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) Update(ctx context.Context, product domain.Product) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, productID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findFn != nil {
		return s.findFn(ctx, productID)
	}
	return domain.Product{}, errStubNotFound
}

func (s *stubProductRepo) List(ctx context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return domain.CursorPage[domain.Product]{}, nil
}

type stubCartRepo struct {
	upsertFn  func(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	getFn     func(ctx context.Context, userID string) (domain.Cart, error)
	replaceFn func(ctx context.Context, userID string, items []domain.CartItem, expectedUpdate *time.Time) (domain.Cart, error)
	clearFn   func(ctx context.Context, userID string, expectedUpdate *time.Time) error
}

func (s *stubCartRepo) UpsertCart(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, cart)
	}
	return cart, nil
}

func (s *stubCartRepo) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID)
	}
	return domain.Cart{}, errStubNotFound
}

func (s *stubCartRepo) ReplaceItems(ctx context.Context, userID string, items []domain.CartItem, expectedUpdate *time.Time) (domain.Cart, error) {
	if s.replaceFn != nil {
		return s.replaceFn(ctx, userID, items, expectedUpdate)
	}
	return domain.Cart{ID: userID, UserID: userID, Items: items}, nil
}

func (s *stubCartRepo) Clear(ctx context.Context, userID string, expectedUpdate *time.Time) error {
	if s.clearFn != nil {
		return s.clearFn(ctx, userID, expectedUpdate)
	}
	return nil
}

type stubOrderRepo struct {
	insertFn func(ctx context.Context, order domain.Order) error
	updateFn func(ctx context.Context, order domain.Order) error
	findFn   func(ctx context.Context, orderID string) (domain.Order, error)
	listFn   func(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error)
}

func (s *stubOrderRepo) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, order)
	}
	return nil
}

func (s *stubOrderRepo) Update(ctx context.Context, order domain.Order) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, order)
	}
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findFn != nil {
		return s.findFn(ctx, orderID)
	}
	return domain.Order{}, errStubNotFound
}

func (s *stubOrderRepo) List(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return domain.CursorPage[domain.Order]{}, nil
}

type stubNotificationRepo struct {
	insertFn  func(ctx context.Context, notification domain.Notification) error
	findFn    func(ctx context.Context, notificationID string) (domain.Notification, error)
	listFn    func(ctx context.Context, filter repositories.NotificationListFilter) (domain.CursorPage[domain.Notification], error)
	markFn    func(ctx context.Context, notificationID string, readAt time.Time) error
	markAllFn func(ctx context.Context, userID string, readAt time.Time) (int, error)
}

func (s *stubNotificationRepo) Insert(ctx context.Context, notification domain.Notification) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, notification)
	}
	return nil
}

func (s *stubNotificationRepo) FindByID(ctx context.Context, notificationID string) (domain.Notification, error) {
	if s.findFn != nil {
		return s.findFn(ctx, notificationID)
	}
	return domain.Notification{}, errStubNotFound
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, filter repositories.NotificationListFilter) (domain.CursorPage[domain.Notification], error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return domain.CursorPage[domain.Notification]{}, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, notificationID string, readAt time.Time) error {
	if s.markFn != nil {
		return s.markFn(ctx, notificationID, readAt)
	}
	return nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	if s.markAllFn != nil {
		return s.markAllFn(ctx, userID, readAt)
	}
	return 0, nil
}

type stubUserRepo struct {
	findFn   func(ctx context.Context, userID string) (domain.UserProfile, error)
	updateFn func(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

func (s *stubUserRepo) FindByID(ctx context.Context, userID string) (domain.UserProfile, error) {
	if s.findFn != nil {
		return s.findFn(ctx, userID)
	}
	return domain.UserProfile{}, errStubNotFound
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, profile)
	}
	return profile, nil
}

type stubCounterRepo struct {
	nextFn func(ctx context.Context, counterID string, step int64) (int64, error)
}

func (s *stubCounterRepo) Next(ctx context.Context, counterID string, step int64) (int64, error) {
	if s.nextFn != nil {
		return s.nextFn(ctx, counterID, step)
	}
	return 1, nil
}

func (s *stubCounterRepo) Configure(ctx context.Context, counterID string, cfg repositories.CounterConfig) error {
	return nil
}

type capturePublisher struct {
	messages []OrderEventMessage
	err      error
}

func (c *capturePublisher) PublishOrderEvent(_ context.Context, message OrderEventMessage) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.messages = append(c.messages, message)
	return "msg-1", nil
}

type stubNotifier struct {
	notifyFn func(ctx context.Context, cmd NotifyCommand) (Notification, error)
	commands []NotifyCommand
}

func (s *stubNotifier) Notify(ctx context.Context, cmd NotifyCommand) (Notification, error) {
	s.commands = append(s.commands, cmd)
	if s.notifyFn != nil {
		return s.notifyFn(ctx, cmd)
	}
	return Notification{ID: "ntf_test", UserID: cmd.UserID, Type: cmd.Type}, nil
}

func (s *stubNotifier) ListForUser(ctx context.Context, query NotificationListQuery) (domain.CursorPage[Notification], error) {
	return domain.CursorPage[Notification]{}, nil
}

func (s *stubNotifier) MarkRead(ctx context.Context, userID string, notificationID string) error {
	return nil
}

func (s *stubNotifier) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return 0, nil
}
