package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/shopfield/api/internal/domain"
	"github.com/shopfield/api/internal/repositories"
)

var (
	errNotificationRepositoryRequired = errors.New("notification service: repository is required")
	errNotificationClockRequired      = errors.New("notification service: clock is required")
)

// ErrNotificationInvalidInput indicates the caller supplied invalid input.
var ErrNotificationInvalidInput = errors.New("notification service: invalid input")

// ErrNotificationNotFound indicates the requested notification does not exist.
var ErrNotificationNotFound = errors.New("notification service: not found")

// ErrNotificationForbidden indicates the notification belongs to another user.
var ErrNotificationForbidden = errors.New("notification service: forbidden")

// ErrNotificationUnavailable indicates the notification backend cannot fulfil the request.
var ErrNotificationUnavailable = errors.New("notification service: unavailable")

const (
	maxNotificationTitleLength   = 200
	maxNotificationMessageLength = 2000
)

// NotificationServiceDeps wires the repository and ambient dependencies for notifications.
type NotificationServiceDeps struct {
	Repository  repositories.NotificationRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type notificationService struct {
	repo     repositories.NotificationRepository
	now      func() time.Time
	newID    func() string
	sanitize *bluemonday.Policy
	logger   func(context.Context, string, map[string]any)
}

// NewNotificationService constructs a NotificationService enforcing dependency validation.
func NewNotificationService(deps NotificationServiceDeps) (NotificationService, error) {
	if deps.Repository == nil {
		return nil, errNotificationRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errNotificationClockRequired
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return "ntf_" + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &notificationService{
		repo:     deps.Repository,
		now:      func() time.Time { return deps.Clock().UTC() },
		newID:    idGen,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}, nil
}

// Notify persists a notification for in-app delivery. Title and message are
// user-facing strings and get stripped of markup before storage. Email and
// push fan-out are out of scope.
func (s *notificationService) Notify(ctx context.Context, cmd NotifyCommand) (Notification, error) {
	if s == nil || s.repo == nil {
		return Notification{}, ErrNotificationUnavailable
	}

	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Notification{}, fmt.Errorf("%w: user id is required", ErrNotificationInvalidInput)
	}
	if strings.TrimSpace(string(cmd.Type)) == "" {
		return Notification{}, fmt.Errorf("%w: type is required", ErrNotificationInvalidInput)
	}

	title := s.cleanText(cmd.Title)
	if title == "" {
		return Notification{}, fmt.Errorf("%w: title is required", ErrNotificationInvalidInput)
	}
	if len(title) > maxNotificationTitleLength {
		return Notification{}, fmt.Errorf("%w: title must be %d characters or fewer", ErrNotificationInvalidInput, maxNotificationTitleLength)
	}
	message := s.cleanText(cmd.Message)
	if len(message) > maxNotificationMessageLength {
		return Notification{}, fmt.Errorf("%w: message must be %d characters or fewer", ErrNotificationInvalidInput, maxNotificationMessageLength)
	}

	notification := domain.Notification{
		ID:        s.newID(),
		UserID:    uid,
		Type:      cmd.Type,
		Title:     title,
		Message:   message,
		Data:      cmd.Data,
		Read:      false,
		CreatedAt: s.now(),
	}

	if err := s.repo.Insert(ctx, notification); err != nil {
		return Notification{}, s.translateRepoError(err)
	}

	s.logger(ctx, "notification.stored", map[string]any{
		"notificationID": notification.ID,
		"userID":         uid,
		"type":           string(cmd.Type),
	})
	return notification, nil
}

// ListForUser returns the user's notifications newest first.
func (s *notificationService) ListForUser(ctx context.Context, query NotificationListQuery) (domain.CursorPage[Notification], error) {
	if s == nil || s.repo == nil {
		return domain.CursorPage[Notification]{}, ErrNotificationUnavailable
	}
	uid := strings.TrimSpace(query.UserID)
	if uid == "" {
		return domain.CursorPage[Notification]{}, ErrNotificationInvalidInput
	}

	page, err := s.repo.ListByUser(ctx, repositories.NotificationListFilter{
		UserID:     uid,
		UnreadOnly: query.UnreadOnly,
		Pagination: query.Pagination,
	})
	if err != nil {
		return domain.CursorPage[Notification]{}, s.translateRepoError(err)
	}
	return page, nil
}

// MarkRead flags a notification as read after verifying ownership.
func (s *notificationService) MarkRead(ctx context.Context, userID string, notificationID string) error {
	if s == nil || s.repo == nil {
		return ErrNotificationUnavailable
	}
	uid := strings.TrimSpace(userID)
	id := strings.TrimSpace(notificationID)
	if uid == "" || id == "" {
		return ErrNotificationInvalidInput
	}

	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateRepoError(err)
	}
	if notification.UserID != uid {
		return ErrNotificationForbidden
	}
	if notification.Read {
		return nil
	}

	if err := s.repo.MarkRead(ctx, id, s.now()); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and reports the count.
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if s == nil || s.repo == nil {
		return 0, ErrNotificationUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return 0, ErrNotificationInvalidInput
	}

	count, err := s.repo.MarkAllRead(ctx, uid, s.now())
	if err != nil {
		return count, s.translateRepoError(err)
	}
	return count, nil
}

func (s *notificationService) cleanText(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitize.Sanitize(value)))
}

func (s *notificationService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrNotificationNotFound
		case repoErr.IsConflict():
			return ErrNotificationUnavailable
		case repoErr.IsUnavailable():
			return ErrNotificationUnavailable
		}
	}
	return ErrNotificationUnavailable
}
