package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultSyncTimeout bounds a single provider call
const DefaultSyncTimeout = 10 * time.Second

// SyncUseCase fans a status out to every active integration of a user
type SyncUseCase struct {
	repo      interfaces.Repository
	providers map[types.IntegrationType]interfaces.SyncProvider
	timeout   time.Duration
}

func NewSyncUseCase(repo interfaces.Repository, providers []interfaces.SyncProvider, timeout time.Duration) *SyncUseCase {
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}

	m := make(map[types.IntegrationType]interfaces.SyncProvider, len(providers))
	for _, p := range providers {
		m[p.Type()] = p
	}

	return &SyncUseCase{
		repo:      repo,
		providers: m,
		timeout:   timeout,
	}
}

// Sync calls every provider concurrently and waits for all of them. Provider
// failures are reported per integration type and never as an error; the error
// is returned only when the integrations cannot be listed.
func (uc *SyncUseCase) Sync(ctx context.Context, userID string, req *model.SyncRequest) (model.SyncResults, error) {
	integrations, err := uc.repo.Integration().List(ctx, userID, true)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list integrations", goerr.V(UserIDKey, userID))
	}

	results := make(model.SyncResults, len(integrations))
	var mu sync.Mutex
	var eg errgroup.Group

	for _, integration := range integrations {
		eg.Go(func() error {
			res := uc.syncOne(ctx, integration, req)

			mu.Lock()
			results[integration.Type] = res
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	if failed := results.Failed(); len(failed) > 0 {
		logging.From(ctx).Warn("Some integrations failed to sync",
			"user_id", userID,
			"failed", failed)
	}

	return results, nil
}

type providerOutcome struct {
	result model.SyncResult
}

// syncOne runs one provider under its own timeout. A provider that ignores
// cancellation is abandoned once the timeout passes.
func (uc *SyncUseCase) syncOne(ctx context.Context, integration *model.Integration, req *model.SyncRequest) model.SyncResult {
	logger := logging.From(ctx).With("integration", integration.Type)

	provider, ok := uc.providers[integration.Type]
	if !ok {
		logger.Warn("No provider configured for integration")
		return model.SyncFailed("Provider not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	done := make(chan providerOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Provider panicked", "panic", r)
				done <- providerOutcome{result: model.SyncFailed("Internal error")}
			}
		}()
		done <- providerOutcome{result: provider.Sync(ctx, integration, req)}
	}()

	select {
	case out := <-done:
		if !out.result.Success {
			logger.Warn("Integration sync failed", "error", out.result.Error)
		}
		return out.result
	case <-ctx.Done():
		logger.Warn("Integration sync timed out", "timeout", uc.timeout.String())
		return model.SyncFailed("Timed out")
	}
}
