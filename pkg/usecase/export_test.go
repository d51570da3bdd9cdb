package usecase

import "github.com/secmon-lab/qoit/pkg/domain/model"

// PendingUpdate returns the detail edits waiting for the save delay
func (d *Dashboard) PendingUpdate() model.ProfileUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// UsernamePattern is exported for testing
var UsernamePattern = usernamePattern
