package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

type profileRepository struct {
	mu         sync.RWMutex
	profiles   map[string]*model.Profile
	byUsername map[string]string
}

func newProfileRepository() *profileRepository {
	return &profileRepository{
		profiles:   make(map[string]*model.Profile),
		byUsername: make(map[string]string),
	}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "profile not found", goerr.V("user_id", userID))
	}
	return p.Clone(), nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "profile not found", goerr.V("username", username))
	}
	return r.profiles[id].Clone(), nil
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid profile")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "profile already exists", goerr.V("user_id", profile.ID))
	}
	if _, taken := r.byUsername[profile.Username]; taken {
		return nil, goerr.Wrap(ErrAlreadyExists, "username is taken", goerr.V("username", profile.Username))
	}

	now := time.Now().UTC()
	created := profile.Clone()
	created.Status = created.Status.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.profiles[created.ID] = created
	r.byUsername[created.Username] = created.ID

	return created.Clone(), nil
}

func (r *profileRepository) Update(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid profile update", goerr.V("user_id", userID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.profiles[userID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "profile not found", goerr.V("user_id", userID))
	}

	updated := current.Clone()
	update.ApplyTo(updated, time.Now().UTC())
	r.profiles[userID] = updated

	return updated.Clone(), nil
}

func (r *profileRepository) ListExpired(ctx context.Context, now time.Time) ([]*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []*model.Profile
	for _, p := range r.profiles {
		if p.Status.Normalize() == types.StatusAvailable || p.BackAt == nil {
			continue
		}
		if !p.BackAt.After(now) {
			expired = append(expired, p.Clone())
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].BackAt.Before(*expired[j].BackAt)
	})
	return expired, nil
}
