package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

// IntegrationSummary describes a connected account without its credentials
type IntegrationSummary struct {
	Type      types.IntegrationType `json:"type"`
	TeamName  string                `json:"team_name,omitempty"`
	IsActive  bool                  `json:"is_active"`
	ExpiresAt *time.Time            `json:"expires_at,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// ManualSyncResult is the outcome of an owner-requested sync
type ManualSyncResult struct {
	Success          bool              `json:"success"`
	Synced           model.SyncResults `json:"synced"`
	IntegrationCount int               `json:"integrationCount"`
}

type IntegrationUseCase struct {
	repo interfaces.Repository
	sync *SyncUseCase
}

func NewIntegrationUseCase(repo interfaces.Repository, sync *SyncUseCase) *IntegrationUseCase {
	return &IntegrationUseCase{repo: repo, sync: sync}
}

// List returns every integration of the user. Tokens never leave this method.
func (uc *IntegrationUseCase) List(ctx context.Context, userID string) ([]IntegrationSummary, error) {
	integrations, err := uc.repo.Integration().List(ctx, userID, false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list integrations", goerr.V(UserIDKey, userID))
	}

	summaries := make([]IntegrationSummary, len(integrations))
	for i, in := range integrations {
		summaries[i] = IntegrationSummary{
			Type:      in.Type,
			TeamName:  in.TeamName,
			IsActive:  in.IsActive,
			ExpiresAt: in.ExpiresAt,
			CreatedAt: in.CreatedAt,
		}
	}
	return summaries, nil
}

// Connect stores the credentials of a connected account, replacing any
// previous integration of the same type
func (uc *IntegrationUseCase) Connect(ctx context.Context, integration *model.Integration) error {
	if err := integration.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(IntegrationTypeKey, integration.Type))
	}

	stored := integration.Clone()
	stored.IsActive = true
	if _, err := uc.repo.Integration().Upsert(ctx, stored); err != nil {
		return goerr.Wrap(err, "failed to store integration",
			goerr.V(UserIDKey, integration.UserID), goerr.V(IntegrationTypeKey, integration.Type))
	}

	logging.From(ctx).Info("Integration connected", "user_id", integration.UserID, "integration", integration.Type)
	return nil
}

// Disconnect removes the integration of the given type
func (uc *IntegrationUseCase) Disconnect(ctx context.Context, userID string, integrationType types.IntegrationType) error {
	if !integrationType.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "unsupported integration type", goerr.V(IntegrationTypeKey, integrationType))
	}

	if err := uc.repo.Integration().Delete(ctx, userID, integrationType); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrIntegrationNotFound, "failed to disconnect integration",
				goerr.V(UserIDKey, userID), goerr.V(IntegrationTypeKey, integrationType))
		}
		return goerr.Wrap(err, "failed to disconnect integration",
			goerr.V(UserIDKey, userID), goerr.V(IntegrationTypeKey, integrationType))
	}

	logging.From(ctx).Info("Integration disconnected", "user_id", userID, "integration", integrationType)
	return nil
}

// SyncNow pushes the stored status to every active integration
func (uc *IntegrationUseCase) SyncNow(ctx context.Context, userID string) (*ManualSyncResult, error) {
	profile, err := uc.repo.Profile().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to sync", goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to sync", goerr.V(UserIDKey, userID))
	}

	results, err := uc.sync.Sync(ctx, userID, model.NewSyncRequest(profile))
	if err != nil {
		return nil, err
	}

	return &ManualSyncResult{
		Success:          true,
		Synced:           results,
		IntegrationCount: len(results),
	}, nil
}
