package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

type integrationKey struct {
	userID string
	typ    types.IntegrationType
}

type integrationRepository struct {
	mu           sync.RWMutex
	integrations map[integrationKey]*model.Integration
}

func newIntegrationRepository() *integrationRepository {
	return &integrationRepository{
		integrations: make(map[integrationKey]*model.Integration),
	}
}

func (r *integrationRepository) List(ctx context.Context, userID string, activeOnly bool) ([]*model.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Integration, 0, len(types.AllIntegrationTypes()))
	// fixed type order keeps results stable
	for _, t := range types.AllIntegrationTypes() {
		i, ok := r.integrations[integrationKey{userID: userID, typ: t}]
		if !ok || (activeOnly && !i.IsActive) {
			continue
		}
		result = append(result, i.Clone())
	}
	return result, nil
}

func (r *integrationRepository) Get(ctx context.Context, userID string, integrationType types.IntegrationType) (*model.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.integrations[integrationKey{userID: userID, typ: integrationType}]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "integration not found",
			goerr.V("user_id", userID),
			goerr.V("type", integrationType))
	}
	return i.Clone(), nil
}

func (r *integrationRepository) Upsert(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	if err := integration.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid integration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := integrationKey{userID: integration.UserID, typ: integration.Type}
	now := time.Now().UTC()

	stored := integration.Clone()
	if existing, ok := r.integrations[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == "" {
			stored.ID = model.NewIntegrationID()
		}
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.integrations[key] = stored
	return stored.Clone(), nil
}

func (r *integrationRepository) Delete(ctx context.Context, userID string, integrationType types.IntegrationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := integrationKey{userID: userID, typ: integrationType}
	if _, ok := r.integrations[key]; !ok {
		return goerr.Wrap(ErrNotFound, "integration not found",
			goerr.V("user_id", userID),
			goerr.V("type", integrationType))
	}
	delete(r.integrations, key)
	return nil
}
