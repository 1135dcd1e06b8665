package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/shopfield/api/internal/repositories"
)

var (
	errUserRepositoryRequired = errors.New("user service: repository is required")
	errUserClockRequired      = errors.New("user service: clock is required")
)

// ErrUserInvalidInput indicates the caller supplied invalid profile data.
var ErrUserInvalidInput = errors.New("user service: invalid input")

// ErrUserNotFound indicates the requested profile does not exist.
var ErrUserNotFound = errors.New("user service: not found")

// ErrUserUnavailable indicates the user backend cannot fulfil the request.
var ErrUserUnavailable = errors.New("user service: unavailable")

// UserServiceDeps wires the repository and ambient dependencies for profile operations.
type UserServiceDeps struct {
	Repository repositories.UserRepository
	Clock      func() time.Time
}

type userService struct {
	repo repositories.UserRepository
	now  func() time.Time
}

// NewUserService constructs a UserService enforcing dependency validation.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Repository == nil {
		return nil, errUserRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errUserClockRequired
	}
	return &userService{
		repo: deps.Repository,
		now:  func() time.Time { return deps.Clock().UTC() },
	}, nil
}

// GetProfile loads the profile for the authenticated user.
func (s *userService) GetProfile(ctx context.Context, userID string) (UserProfile, error) {
	if s == nil || s.repo == nil {
		return UserProfile{}, ErrUserUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return UserProfile{}, ErrUserInvalidInput
	}

	profile, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return UserProfile{}, s.translateRepoError(err)
	}
	return profile, nil
}

// UpdateProfile applies the partial profile update. An absent profile is
// created on first write; authentication itself stays with the Firebase
// verifier.
func (s *userService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error) {
	if s == nil || s.repo == nil {
		return UserProfile{}, ErrUserUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return UserProfile{}, ErrUserInvalidInput
	}
	if cmd.DisplayName == nil && cmd.PreferredLanguage == nil {
		return UserProfile{}, fmt.Errorf("%w: nothing to update", ErrUserInvalidInput)
	}

	profile, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if !isRepoNotFound(err) {
			return UserProfile{}, s.translateRepoError(err)
		}
		profile.ID = uid
	}
	profile.ID = uid

	if cmd.DisplayName != nil {
		name := strings.TrimSpace(*cmd.DisplayName)
		if err := validateDisplayName(name); err != nil {
			return UserProfile{}, err
		}
		profile.DisplayName = name
	}
	if cmd.PreferredLanguage != nil {
		tag, err := canonicaliseLanguageTag(*cmd.PreferredLanguage)
		if err != nil {
			return UserProfile{}, err
		}
		profile.PreferredLanguage = tag
	}

	saved, err := s.repo.UpdateProfile(ctx, profile)
	if err != nil {
		return UserProfile{}, s.translateRepoError(err)
	}
	return saved, nil
}

func validateDisplayName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < 2 || length > 100 {
		return fmt.Errorf("%w: display name must be 2-100 characters", ErrUserInvalidInput)
	}
	return nil
}

func canonicaliseLanguageTag(tag string) (string, error) {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return "", nil
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: invalid language tag %q", ErrUserInvalidInput, tag)
	}
	return parsed.String(), nil
}

func (s *userService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrUserNotFound
		case repoErr.IsConflict():
			return ErrUserUnavailable
		case repoErr.IsUnavailable():
			return ErrUserUnavailable
		}
	}
	return ErrUserUnavailable
}
