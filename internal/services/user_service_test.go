package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/shopfield/api/internal/domain"
)

func newTestUserService(t *testing.T, deps UserServiceDeps) UserService {
	t.Helper()
	if deps.Repository == nil {
		deps.Repository = &stubUserRepo{}
	}
	if deps.Clock == nil {
		deps.Clock = fixedClock(time.Date(2026, 4, 10, 11, 0, 0, 0, time.UTC))
	}
	svc, err := NewUserService(deps)
	if err != nil {
		t.Fatalf("new user service: %v", err)
	}
	return svc
}

func TestUserServiceGetProfile(t *testing.T) {
	repo := &stubUserRepo{
		findFn: func(_ context.Context, userID string) (domain.UserProfile, error) {
			return domain.UserProfile{ID: userID, DisplayName: "Alex", Email: "alex@example.com"}, nil
		},
	}
	svc := newTestUserService(t, UserServiceDeps{Repository: repo})

	profile, err := svc.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.DisplayName != "Alex" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestUserServiceGetProfileNotFound(t *testing.T) {
	svc := newTestUserService(t, UserServiceDeps{})

	if _, err := svc.GetProfile(context.Background(), "user-missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserServiceUpdateProfileCanonicalisesLanguage(t *testing.T) {
	repo := &stubUserRepo{
		findFn: func(_ context.Context, userID string) (domain.UserProfile, error) {
			return domain.UserProfile{ID: userID, DisplayName: "Alex"}, nil
		},
	}
	svc := newTestUserService(t, UserServiceDeps{Repository: repo})

	lang := "en_us"
	profile, err := svc.UpdateProfile(context.Background(), UpdateProfileCommand{
		UserID:            "user-1",
		PreferredLanguage: &lang,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if profile.PreferredLanguage != "en-US" {
		t.Fatalf("expected canonical tag en-US, got %q", profile.PreferredLanguage)
	}
	if profile.DisplayName != "Alex" {
		t.Fatalf("expected untouched display name, got %q", profile.DisplayName)
	}
}

func TestUserServiceUpdateProfileRejectsBadLanguageTag(t *testing.T) {
	repo := &stubUserRepo{
		findFn: func(_ context.Context, userID string) (domain.UserProfile, error) {
			return domain.UserProfile{ID: userID}, nil
		},
	}
	svc := newTestUserService(t, UserServiceDeps{Repository: repo})

	lang := "not a language"
	if _, err := svc.UpdateProfile(context.Background(), UpdateProfileCommand{
		UserID:            "user-1",
		PreferredLanguage: &lang,
	}); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("expected ErrUserInvalidInput, got %v", err)
	}
}

func TestUserServiceUpdateProfileRejectsShortDisplayName(t *testing.T) {
	repo := &stubUserRepo{
		findFn: func(_ context.Context, userID string) (domain.UserProfile, error) {
			return domain.UserProfile{ID: userID}, nil
		},
	}
	svc := newTestUserService(t, UserServiceDeps{Repository: repo})

	name := "A"
	if _, err := svc.UpdateProfile(context.Background(), UpdateProfileCommand{
		UserID:      "user-1",
		DisplayName: &name,
	}); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("expected ErrUserInvalidInput, got %v", err)
	}
}

func TestUserServiceUpdateProfileRequiresAField(t *testing.T) {
	svc := newTestUserService(t, UserServiceDeps{})

	if _, err := svc.UpdateProfile(context.Background(), UpdateProfileCommand{UserID: "user-1"}); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("expected ErrUserInvalidInput, got %v", err)
	}
}

func TestUserServiceUpdateProfileCreatesMissingProfile(t *testing.T) {
	var saved *domain.UserProfile
	repo := &stubUserRepo{
		updateFn: func(_ context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
			saved = &profile
			return profile, nil
		},
	}
	svc := newTestUserService(t, UserServiceDeps{Repository: repo})

	name := "New Person"
	profile, err := svc.UpdateProfile(context.Background(), UpdateProfileCommand{
		UserID:      "user-new",
		DisplayName: &name,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if saved == nil {
		t.Fatalf("expected profile persisted")
	}
	if profile.ID != "user-new" || profile.DisplayName != "New Person" {
		t.Fatalf("expected profile created on first write, got %+v", profile)
	}
}
