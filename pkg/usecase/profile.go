package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/model/auth"
	"github.com/secmon-lab/qoit/pkg/domain/model/backat"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/clock"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,28}[a-z0-9]$`)

// PublicProfile is what a visitor sees on a status page
type PublicProfile struct {
	Profile     *model.Profile
	StatusLabel string
	// nil while available or when no return time is set
	Countdown *backat.Countdown
	Defaults  types.ResponseDefaults
}

// RegisterInput creates the profile of a newly signed-in owner
type RegisterInput struct {
	Username    string
	DisplayName string
	Title       string
}

type ProfileUseCase struct {
	repo  interfaces.Repository
	clock clock.Clock
}

func NewProfileUseCase(repo interfaces.Repository, c clock.Clock) *ProfileUseCase {
	return &ProfileUseCase{repo: repo, clock: c}
}

// GetByUsername returns the public view of a status page with its countdown
// computed at the current time
func (uc *ProfileUseCase) GetByUsername(ctx context.Context, username string) (*PublicProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	profile, err := uc.repo.Profile().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to get profile", goerr.V(UsernameKey, username))
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V(UsernameKey, username))
	}

	pub := &PublicProfile{
		Profile:     profile,
		StatusLabel: profile.Status.Normalize().Label(),
		Defaults:    profile.ResponseDefaults(),
	}
	if !profile.Status.Normalize().IsAvailable() && profile.BackAt != nil {
		cd := backat.FormatCountdown(*profile.BackAt, uc.clock.Now())
		pub.Countdown = &cd
	}
	return pub, nil
}

// GetMe returns the owner's own profile
func (uc *ProfileUseCase) GetMe(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := uc.repo.Profile().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to get profile", goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V(UserIDKey, userID))
	}
	return profile, nil
}

// Register creates an available profile for user under a unique username
func (uc *ProfileUseCase) Register(ctx context.Context, user *auth.User, input RegisterInput) (*model.Profile, error) {
	if user == nil || user.ID == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "user is required to register")
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if !usernamePattern.MatchString(username) {
		return nil, goerr.Wrap(ErrInvalidInput, "username must be 3-30 lowercase letters, digits or hyphens",
			goerr.V(UsernameKey, username))
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = user.Name
	}

	d := types.StatusAvailable.Defaults()
	profile, err := uc.repo.Profile().Create(ctx, &model.Profile{
		ID:                user.ID,
		Username:          username,
		DisplayName:       displayName,
		Title:             strings.TrimSpace(input.Title),
		Email:             user.Email,
		Status:            types.StatusAvailable,
		EmailResponseTime: d.EmailResponseTime,
		DMResponseTime:    d.DMResponseTime,
		UrgentMethod:      d.UrgentMethod,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrProfileExists, "failed to register profile",
				goerr.V(UserIDKey, user.ID), goerr.V(UsernameKey, username))
		}
		return nil, goerr.Wrap(err, "failed to register profile", goerr.V(UserIDKey, user.ID))
	}

	logging.From(ctx).Info("Profile registered", "user_id", user.ID, "username", username)
	return profile, nil
}

// UpdateInfo changes the descriptive fields of a profile. Status fields go
// through StatusUseCase and are rejected here.
func (uc *ProfileUseCase) UpdateInfo(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error) {
	if update.Status.IsPresent() || update.StatusMessage.IsPresent() || update.BackAt.IsPresent() ||
		update.EmailResponseTime.IsPresent() || update.DMResponseTime.IsPresent() || update.UrgentMethod.IsPresent() {
		return nil, goerr.Wrap(ErrInvalidInput, "status fields cannot be changed here", goerr.V(UserIDKey, userID))
	}
	if update.IsEmpty() {
		return nil, goerr.Wrap(ErrInvalidInput, "no profile fields to update", goerr.V(UserIDKey, userID))
	}

	profile, err := uc.repo.Profile().Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to update profile", goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to update profile", goerr.V(UserIDKey, userID))
	}
	return profile, nil
}
