package model

import (
	"time"

	"github.com/secmon-lab/qoit/pkg/domain/types"
)

// SyncRequest is the status snapshot pushed to every connected integration
type SyncRequest struct {
	Status        types.StatusMode
	StatusMessage *string
	BackAt        *time.Time
	DisplayName   string
}

// NewSyncRequest builds a request from the persisted profile
func NewSyncRequest(p *Profile) *SyncRequest {
	c := p.Clone()
	return &SyncRequest{
		Status:        c.Status.Normalize(),
		StatusMessage: c.StatusMessage,
		BackAt:        c.BackAt,
		DisplayName:   c.SenderName(),
	}
}

// Message returns the status message or an empty string
func (r *SyncRequest) Message() string {
	if r.StatusMessage == nil {
		return ""
	}
	return *r.StatusMessage
}

// SyncResult is the outcome of pushing a status to one provider
type SyncResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SyncSucceeded returns a successful result
func SyncSucceeded() SyncResult {
	return SyncResult{Success: true}
}

// SyncFailed returns a failed result carrying msg
func SyncFailed(msg string) SyncResult {
	return SyncResult{Success: false, Error: msg}
}

// SyncResults maps each attempted integration to its outcome
type SyncResults map[types.IntegrationType]SyncResult

// AllSucceeded reports whether every attempted provider succeeded
func (r SyncResults) AllSucceeded() bool {
	for _, res := range r {
		if !res.Success {
			return false
		}
	}
	return true
}

// Failed returns the integration types whose sync failed
func (r SyncResults) Failed() []types.IntegrationType {
	var failed []types.IntegrationType
	for _, t := range types.AllIntegrationTypes() {
		if res, ok := r[t]; ok && !res.Success {
			failed = append(failed, t)
		}
	}
	return failed
}
