package interfaces

import (
	"context"

	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

// SyncProvider mirrors a status to one external service. Sync never returns an
// error: every failure, including configuration problems, is reported in the result.
type SyncProvider interface {
	Type() types.IntegrationType
	Sync(ctx context.Context, integration *model.Integration, req *model.SyncRequest) model.SyncResult
}
