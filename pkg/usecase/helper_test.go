package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/repository/memory"
)

const testUserID = "user-1"

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// fakeProvider records every sync request and answers with a fixed result
type fakeProvider struct {
	typ    types.IntegrationType
	result model.SyncResult
	// when set, Sync waits for ctx cancellation or release
	block   chan struct{}
	panicOn bool

	mu    sync.Mutex
	calls []*model.SyncRequest
}

func newFakeProvider(typ types.IntegrationType) *fakeProvider {
	return &fakeProvider{typ: typ, result: model.SyncSucceeded()}
}

func (p *fakeProvider) Type() types.IntegrationType {
	return p.typ
}

func (p *fakeProvider) Sync(ctx context.Context, integration *model.Integration, req *model.SyncRequest) model.SyncResult {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if p.panicOn {
		panic("provider exploded")
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return model.SyncFailed("cancelled")
		}
	}
	return p.result
}

func (p *fakeProvider) Calls() []*model.SyncRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*model.SyncRequest(nil), p.calls...)
}

// setupRepository returns a memory repository holding an available profile of
// testUserID and an active integration for each given type
func setupRepository(t *testing.T, integrations ...types.IntegrationType) *memory.Memory {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()

	_, err := repo.Profile().Create(ctx, &model.Profile{
		ID:          testUserID,
		Username:    "ada",
		DisplayName: "Ada Lovelace",
		Email:       "ada@example.com",
		Status:      types.StatusAvailable,
	})
	gt.NoError(t, err).Required()

	for _, typ := range integrations {
		_, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:      testUserID,
			Type:        typ,
			AccessToken: "token-" + typ.String(),
			IsActive:    true,
		})
		gt.NoError(t, err).Required()
	}

	return repo
}

func ptr[T any](v T) *T {
	return &v
}
