package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/shopfield/api/internal/domain"
	pfirestore "github.com/shopfield/api/internal/platform/firestore"
	"github.com/shopfield/api/internal/repositories"
)

const (
	cartCollection = "carts"
)

// CartRepository persists carts within Firestore. The document ID equals the
// owning user ID, which gives the one-cart-per-user invariant for free.
type CartRepository struct {
	base     *pfirestore.BaseRepository[cartDocument]
	provider *pfirestore.Provider
}

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[cartDocument](provider, cartCollection, nil, nil)
	return &CartRepository{
		base:     base,
		provider: provider,
	}, nil
}

// UpsertCart persists the whole cart document using the user ID as document identifier.
func (r *CartRepository) UpsertCart(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}

	cartID := strings.TrimSpace(firstCartID(cart))
	if cartID == "" {
		return domain.Cart{}, errors.New("cart repository: cart id is required")
	}

	now := time.Now().UTC()
	if !cart.UpdatedAt.IsZero() {
		now = cart.UpdatedAt.UTC()
	}
	createdAt := cart.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}

	doc := cartDocument{
		Items:     encodeCartItems(cart.Items),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}

	result, err := r.base.Set(ctx, cartID, doc)
	if err != nil {
		return domain.Cart{}, err
	}

	saved := cloneCart(cart)
	saved.ID = cartID
	saved.UserID = cartID
	saved.CreatedAt = createdAt
	saved.UpdatedAt = result.UpdateTime
	return saved, nil
}

// GetCart loads the cart for the given user ID. The returned UpdatedAt is the
// server-side document update time, suitable for optimistic preconditions.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, errors.New("cart repository: user id is required")
	}

	doc, err := r.base.Get(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{
		ID:     doc.ID,
		UserID: doc.ID,
		Items:  decodeCartItems(doc.Data.Items),
		CreatedAt: func() time.Time {
			if !doc.Data.CreatedAt.IsZero() {
				return doc.Data.CreatedAt
			}
			return doc.CreateTime
		}(),
		UpdatedAt: func() time.Time {
			if !doc.UpdateTime.IsZero() {
				return doc.UpdateTime
			}
			return doc.Data.UpdatedAt
		}(),
	}
	return cart, nil
}

// ReplaceItems overwrites the cart line items. A non-nil expectedUpdate makes
// the write conditional on the stored document's last update time.
func (r *CartRepository) ReplaceItems(ctx context.Context, userID string, items []domain.CartItem, expectedUpdate *time.Time) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, errors.New("cart repository: user id is required")
	}

	updates := []firestore.Update{
		{Path: "items", Value: encodeCartItems(items)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	}

	var preconditions []firestore.Precondition
	if expectedUpdate != nil && !expectedUpdate.IsZero() {
		preconditions = append(preconditions, firestore.LastUpdateTime(expectedUpdate.UTC()))
	}

	result, err := r.base.Update(ctx, uid, updates, preconditions...)
	if err != nil {
		return domain.Cart{}, err
	}

	return domain.Cart{
		ID:        uid,
		UserID:    uid,
		Items:     cloneCartItems(items),
		UpdatedAt: result.UpdateTime,
	}, nil
}

// Clear removes every line item from the cart, leaving the document in place.
func (r *CartRepository) Clear(ctx context.Context, userID string, expectedUpdate *time.Time) error {
	_, err := r.ReplaceItems(ctx, userID, nil, expectedUpdate)
	return err
}

func firstCartID(cart domain.Cart) string {
	if strings.TrimSpace(cart.ID) != "" {
		return strings.TrimSpace(cart.ID)
	}
	return strings.TrimSpace(cart.UserID)
}

func cloneCart(cart domain.Cart) domain.Cart {
	dup := cart
	dup.Items = cloneCartItems(cart.Items)
	return dup
}

func cloneCartItems(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return nil
	}
	dup := make([]domain.CartItem, len(items))
	copy(dup, items)
	return dup
}

func encodeCartItems(items []domain.CartItem) []cartItemDocument {
	out := make([]cartItemDocument, 0, len(items))
	for _, item := range items {
		doc := cartItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			AddedAt:   item.AddedAt.UTC(),
		}
		if item.UpdatedAt != nil {
			updated := item.UpdatedAt.UTC()
			doc.UpdatedAt = &updated
		}
		out = append(out, doc)
	}
	return out
}

func decodeCartItems(docs []cartItemDocument) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(docs))
	for _, doc := range docs {
		item := domain.CartItem{
			ProductID: doc.ProductID,
			Name:      doc.Name,
			Quantity:  doc.Quantity,
			UnitPrice: doc.UnitPrice,
			AddedAt:   doc.AddedAt,
		}
		if doc.UpdatedAt != nil {
			updated := *doc.UpdatedAt
			item.UpdatedAt = &updated
		}
		out = append(out, item)
	}
	return out
}

type cartDocument struct {
	Items     []cartItemDocument `firestore:"items"`
	CreatedAt time.Time          `firestore:"createdAt"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type cartItemDocument struct {
	ProductID string     `firestore:"productId"`
	Name      string     `firestore:"name"`
	Quantity  int        `firestore:"quantity"`
	UnitPrice int64      `firestore:"unitPrice"`
	AddedAt   time.Time  `firestore:"addedAt"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty"`
}

var _ repositories.CartRepository = (*CartRepository)(nil)
