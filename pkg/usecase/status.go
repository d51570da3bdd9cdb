package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/errutil"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

// StatusChange is the outcome of a persisted status or detail change
type StatusChange struct {
	Profile *model.Profile
	Synced  model.SyncResults
}

// StatusUseCase persists status changes and propagates them to integrations.
// Persistence always completes before the sync starts, so a failed sync never
// undoes a saved change.
type StatusUseCase struct {
	repo     interfaces.Repository
	sync     *SyncUseCase
	defaults map[types.StatusMode]types.ResponseDefaults
}

func NewStatusUseCase(repo interfaces.Repository, sync *SyncUseCase, defaults map[types.StatusMode]types.ResponseDefaults) *StatusUseCase {
	return &StatusUseCase{
		repo:     repo,
		sync:     sync,
		defaults: defaults,
	}
}

// Defaults returns the response-time defaults applied when status is selected
func (uc *StatusUseCase) Defaults(status types.StatusMode) types.ResponseDefaults {
	if d, ok := uc.defaults[status]; ok {
		return d
	}
	return status.Defaults()
}

// StatusUpdate builds the single write for selecting status: the mode's
// response defaults, and cleared message and return time for available
func (uc *StatusUseCase) StatusUpdate(status types.StatusMode) model.ProfileUpdate {
	d := uc.Defaults(status)
	update := model.ProfileUpdate{
		Status:            model.Set(status),
		EmailResponseTime: model.Set(d.EmailResponseTime),
		DMResponseTime:    model.Set(d.DMResponseTime),
		UrgentMethod:      model.Set(d.UrgentMethod),
	}
	if status.IsAvailable() {
		update.StatusMessage = model.Null[string]()
		update.BackAt = model.Null[time.Time]()
	}
	return update
}

// Save persists update without syncing
func (uc *StatusUseCase) Save(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error) {
	profile, err := uc.repo.Profile().Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to save profile", goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to save profile", goerr.V(UserIDKey, userID))
	}
	return profile, nil
}

// Propagate syncs the persisted profile. A failure to list integrations is
// handled here and yields no results.
func (uc *StatusUseCase) Propagate(ctx context.Context, profile *model.Profile) model.SyncResults {
	if uc.sync == nil {
		return model.SyncResults{}
	}

	results, err := uc.sync.Sync(ctx, profile.ID, model.NewSyncRequest(profile))
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to sync status")
		return model.SyncResults{}
	}
	return results
}

// SetStatus applies the mode defaults, persists in one write and syncs
func (uc *StatusUseCase) SetStatus(ctx context.Context, userID string, status types.StatusMode) (*StatusChange, error) {
	status = status.Normalize()
	if !status.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid status", goerr.V("status", status))
	}

	return uc.apply(ctx, userID, uc.StatusUpdate(status))
}

// SaveDetails persists message, return time and response-time fields, then
// syncs. A message or return time cannot be set while available.
func (uc *StatusUseCase) SaveDetails(ctx context.Context, userID string, details model.ProfileUpdate) (*StatusChange, error) {
	details.Status = model.Patch[types.StatusMode]{}
	if details.IsEmpty() {
		return nil, goerr.Wrap(ErrInvalidInput, "no detail fields to save", goerr.V(UserIDKey, userID))
	}

	if details.TouchesDetails() {
		current, err := uc.repo.Profile().Get(ctx, userID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrProfileNotFound, "failed to get profile", goerr.V(UserIDKey, userID))
			}
			return nil, goerr.Wrap(err, "failed to get profile", goerr.V(UserIDKey, userID))
		}
		if current.Status.Normalize().IsAvailable() {
			return nil, goerr.Wrap(ErrDetailsWhileAvailable, "cannot save details", goerr.V(UserIDKey, userID))
		}
	}

	return uc.apply(ctx, userID, details)
}

// Transition persists update together with its status defaults and syncs.
// update must carry a status.
func (uc *StatusUseCase) Transition(ctx context.Context, userID string, update model.ProfileUpdate) (*StatusChange, error) {
	status, ok := update.Status.Value()
	if !ok {
		return nil, goerr.Wrap(ErrInvalidInput, "transition requires a status")
	}
	return uc.apply(ctx, userID, update.Merge(uc.StatusUpdate(status.Normalize())))
}

func (uc *StatusUseCase) apply(ctx context.Context, userID string, update model.ProfileUpdate) (*StatusChange, error) {
	profile, err := uc.Save(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	return &StatusChange{
		Profile: profile,
		Synced:  uc.Propagate(ctx, profile),
	}, nil
}

// ExpireDue returns every profile whose return time is not after now to
// available. Failures of single profiles are handled and the sweep continues.
func (uc *StatusUseCase) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	expired, err := uc.repo.Profile().ListExpired(ctx, now)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list expired profiles")
	}

	count := 0
	for _, p := range expired {
		if _, err := uc.SetStatus(ctx, p.ID, types.StatusAvailable); err != nil {
			_ = errutil.Handle(ctx, err, "failed to expire status")
			continue
		}
		logging.From(ctx).Info("Status expired", "user_id", p.ID, "back_at", p.BackAt)
		count++
	}

	return count, nil
}
