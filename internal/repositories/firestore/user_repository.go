package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	domain "github.com/shopfield/api/internal/domain"
	pfirestore "github.com/shopfield/api/internal/platform/firestore"
	"github.com/shopfield/api/internal/repositories"
)

const usersCollection = "users"

// UserRepository persists user profiles in Firestore.
type UserRepository struct {
	base *pfirestore.BaseRepository[userDocument]
}

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[userDocument](provider, usersCollection, nil, nil)
	return &UserRepository{base: base}, nil
}

// FindByID loads the user profile by UID.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	if strings.TrimSpace(userID) == "" {
		return domain.UserProfile{}, errors.New("user id is required")
	}

	doc, err := r.base.Get(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}

	profile := decodeUserDocument(doc.Data)
	profile.ID = doc.ID
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = doc.CreateTime
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = doc.UpdateTime
	}
	return profile, nil
}

// UpdateProfile upserts the user profile.
func (r *UserRepository) UpdateProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	userID := strings.TrimSpace(profile.ID)
	if userID == "" {
		return domain.UserProfile{}, errors.New("profile id is required")
	}

	now := time.Now().UTC()
	doc := encodeUserDocument(profile, now)

	result, err := r.base.Set(ctx, userID, doc)
	if err != nil {
		return domain.UserProfile{}, err
	}

	saved := decodeUserDocument(doc)
	saved.ID = userID
	saved.UpdatedAt = result.UpdateTime
	return saved, nil
}

type userDocument struct {
	UID               string    `firestore:"uid"`
	DisplayName       string    `firestore:"displayName"`
	Email             string    `firestore:"email"`
	PreferredLanguage string    `firestore:"preferredLanguage"`
	Roles             []string  `firestore:"roles"`
	CreatedAt         time.Time `firestore:"createdAt"`
	UpdatedAt         time.Time `firestore:"updatedAt"`
}

func decodeUserDocument(doc userDocument) domain.UserProfile {
	return domain.UserProfile{
		DisplayName:       doc.DisplayName,
		Email:             strings.TrimSpace(doc.Email),
		PreferredLanguage: strings.TrimSpace(doc.PreferredLanguage),
		Roles:             cloneStrings(doc.Roles),
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

func encodeUserDocument(profile domain.UserProfile, now time.Time) userDocument {
	doc := userDocument{
		UID:               strings.TrimSpace(profile.ID),
		DisplayName:       strings.TrimSpace(profile.DisplayName),
		Email:             strings.ToLower(strings.TrimSpace(profile.Email)),
		PreferredLanguage: strings.TrimSpace(profile.PreferredLanguage),
		Roles:             normaliseRoles(profile.Roles),
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         now,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.Roles == nil {
		doc.Roles = []string{}
	}
	return doc
}

func normaliseRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	uniq := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		trimmed := strings.ToLower(strings.TrimSpace(role))
		if trimmed == "" {
			continue
		}
		uniq[trimmed] = struct{}{}
	}
	if len(uniq) == 0 {
		return nil
	}
	normalised := make([]string, 0, len(uniq))
	for role := range uniq {
		normalised = append(normalised, role)
	}
	sort.Strings(normalised)
	return normalised
}

var _ repositories.UserRepository = (*UserRepository)(nil)
