package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/shopfield/api/internal/domain"
	pfirestore "github.com/shopfield/api/internal/platform/firestore"
	"github.com/shopfield/api/internal/platform/pagination"
	"github.com/shopfield/api/internal/repositories"
)

const notificationsCollection = "notifications"

// NotificationRepository persists per-user notification documents.
type NotificationRepository struct {
	base *pfirestore.BaseRepository[notificationDocument]
}

// NewNotificationRepository constructs a Firestore-backed notification repository.
func NewNotificationRepository(provider *pfirestore.Provider) (*NotificationRepository, error) {
	if provider == nil {
		return nil, errors.New("notification repository: firestore provider is required")
	}
	base := pfirestore.NewBaseRepository[notificationDocument](provider, notificationsCollection, nil, nil)
	return &NotificationRepository{base: base}, nil
}

// Insert stores a new notification document.
func (r *NotificationRepository) Insert(ctx context.Context, notification domain.Notification) error {
	if r == nil || r.base == nil {
		return errors.New("notification repository not initialised")
	}
	notificationID := strings.TrimSpace(notification.ID)
	if notificationID == "" {
		return errors.New("notification repository: notification id is required")
	}
	docRef, err := r.base.DocumentRef(ctx, notificationID)
	if err != nil {
		return err
	}
	doc := encodeNotificationDocument(notification)
	if _, err := docRef.Create(ctx, doc); err != nil {
		return pfirestore.WrapError("notifications.insert", err)
	}
	return nil
}

// FindByID fetches a single notification.
func (r *NotificationRepository) FindByID(ctx context.Context, notificationID string) (domain.Notification, error) {
	if r == nil || r.base == nil {
		return domain.Notification{}, errors.New("notification repository not initialised")
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return domain.Notification{}, errors.New("notification repository: notification id is required")
	}
	doc, err := r.base.Get(ctx, notificationID)
	if err != nil {
		return domain.Notification{}, err
	}
	return decodeNotificationDocument(notificationID, doc.Data, doc.CreateTime), nil
}

// ListByUser returns notifications for a user ordered by most recent first.
func (r *NotificationRepository) ListByUser(ctx context.Context, filter repositories.NotificationListFilter) (domain.CursorPage[domain.Notification], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Notification]{}, errors.New("notification repository not initialised")
	}
	userID := strings.TrimSpace(filter.UserID)
	if userID == "" {
		return domain.CursorPage[domain.Notification]{}, errors.New("notification repository: user id is required")
	}

	limit := filter.Pagination.PageSize
	if limit < 0 {
		limit = 0
	}
	fetchLimit := limit
	if limit > 0 {
		fetchLimit = limit + 1
	}

	var startAfter []any
	if token := strings.TrimSpace(filter.Pagination.PageToken); token != "" {
		tokenTime, tokenID, err := pagination.DecodeTimeIDToken(token)
		if err != nil {
			return domain.CursorPage[domain.Notification]{}, fmt.Errorf("notification repository: invalid page token: %w", err)
		}
		startAfter = []any{tokenTime, tokenID}
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("userId", "==", userID)
		if filter.UnreadOnly {
			q = q.Where("read", "==", false)
		}
		q = q.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
		if len(startAfter) == 2 {
			q = q.StartAfter(startAfter...)
		}
		if fetchLimit > 0 {
			q = q.Limit(fetchLimit)
		}
		return q
	})
	if err != nil {
		return domain.CursorPage[domain.Notification]{}, err
	}

	valueDocs := docs
	nextToken := ""
	if limit > 0 && len(valueDocs) == fetchLimit {
		last := valueDocs[len(valueDocs)-1]
		tokenTime := last.Data.CreatedAt
		if tokenTime.IsZero() {
			tokenTime = last.CreateTime
		}
		nextToken = pagination.EncodeTimeIDToken(tokenTime, last.ID)
		valueDocs = valueDocs[:len(valueDocs)-1]
	}

	items := make([]domain.Notification, 0, len(valueDocs))
	for _, doc := range valueDocs {
		items = append(items, decodeNotificationDocument(doc.ID, doc.Data, doc.CreateTime))
	}

	return domain.CursorPage[domain.Notification]{
		Items:         items,
		NextPageToken: nextToken,
	}, nil
}

// MarkRead flags a single notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID string, readAt time.Time) error {
	if r == nil || r.base == nil {
		return errors.New("notification repository not initialised")
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return errors.New("notification repository: notification id is required")
	}
	updates := []firestore.Update{
		{Path: "read", Value: true},
		{Path: "readAt", Value: readAt.UTC()},
	}
	_, err := r.base.Update(ctx, notificationID, updates)
	return err
}

// MarkAllRead flags every unread notification of the user as read and
// reports how many documents changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	if r == nil || r.base == nil {
		return 0, errors.New("notification repository not initialised")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, errors.New("notification repository: user id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", userID).Where("read", "==", false)
	})
	if err != nil {
		return 0, err
	}

	updates := []firestore.Update{
		{Path: "read", Value: true},
		{Path: "readAt", Value: readAt.UTC()},
	}
	count := 0
	for _, doc := range docs {
		if _, err := r.base.Update(ctx, doc.ID, updates); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

type notificationDocument struct {
	UserID    string         `firestore:"userId"`
	Type      string         `firestore:"type"`
	Title     string         `firestore:"title"`
	Message   string         `firestore:"message"`
	Data      map[string]any `firestore:"data,omitempty"`
	Read      bool           `firestore:"read"`
	ReadAt    *time.Time     `firestore:"readAt,omitempty"`
	CreatedAt time.Time      `firestore:"createdAt"`
}

func encodeNotificationDocument(notification domain.Notification) notificationDocument {
	return notificationDocument{
		UserID:    strings.TrimSpace(notification.UserID),
		Type:      strings.TrimSpace(string(notification.Type)),
		Title:     notification.Title,
		Message:   notification.Message,
		Data:      cloneAnyMap(notification.Data),
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt.UTC(),
	}
}

func decodeNotificationDocument(id string, doc notificationDocument, createdAt time.Time) domain.Notification {
	return domain.Notification{
		ID:        strings.TrimSpace(id),
		UserID:    doc.UserID,
		Type:      domain.NotificationType(doc.Type),
		Title:     doc.Title,
		Message:   doc.Message,
		Data:      cloneAnyMap(doc.Data),
		Read:      doc.Read,
		CreatedAt: chooseTime(doc.CreatedAt, createdAt),
	}
}

func cloneAnyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dup := make(map[string]any, len(src))
	for k, v := range src {
		dup[k] = v
	}
	return dup
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)
