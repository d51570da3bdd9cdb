package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/model/backat"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/async"
	"github.com/secmon-lab/qoit/pkg/utils/clock"
	"github.com/secmon-lab/qoit/pkg/utils/debounce"
	"github.com/secmon-lab/qoit/pkg/utils/errutil"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

const (
	// DefaultSaveDelay is the quiet period before coalesced detail edits are saved
	DefaultSaveDelay = time.Second

	// DefaultExpiryCheckInterval is how often an open session checks its return time
	DefaultExpiryCheckInterval = time.Second
)

// SaveState reports the persistence of the latest change
type SaveState string

const (
	SaveStateSaving SaveState = "saving"
	SaveStateSaved  SaveState = "saved"
	SaveStateFailed SaveState = "failed"
)

// SyncState reports the propagation of the latest saved change
type SyncState string

const (
	SyncStateIdle    SyncState = "idle"
	SyncStateSyncing SyncState = "syncing"
	SyncStateSynced  SyncState = "synced"
)

// DashboardView is a snapshot of an owner session
type DashboardView struct {
	Profile     *model.Profile    `json:"-"`
	SaveState   SaveState         `json:"save_state"`
	SyncState   SyncState         `json:"sync_state"`
	PendingSave bool              `json:"pending_save"`
	LastSync    model.SyncResults `json:"last_sync,omitempty"`
	Picker      backat.View       `json:"picker"`
}

type queuedCommit struct {
	update  model.ProfileUpdate
	failure string
}

type dashboardConfig struct {
	clock          clock.Clock
	saveDelay      time.Duration
	expiryInterval time.Duration
	pickerOptions  []backat.PickerOption
}

// Dashboard is the owner's editing session. It keeps an optimistic copy of the
// profile, saves detail edits after a quiet period, commits picker gestures and
// returns the profile to available when the return time passes.
type Dashboard struct {
	userID string
	status *StatusUseCase
	clock  clock.Clock
	ctx    context.Context

	// serializes writes of this session
	writeMu sync.Mutex

	// picker commits waiting to be saved, in commit order
	queue    []queuedCommit
	draining bool
	commits  async.Group

	mu        sync.Mutex
	profile   *model.Profile
	pending   model.ProfileUpdate
	saveState SaveState
	syncState SyncState
	lastSync  model.SyncResults
	expiring  bool
	closed    bool

	debouncer *debounce.Debouncer
	picker    *backat.Picker
	expiry    clock.Timer
}

func newDashboard(ctx context.Context, profile *model.Profile, status *StatusUseCase, cfg dashboardConfig) *Dashboard {
	d := &Dashboard{
		userID:    profile.ID,
		status:    status,
		clock:     cfg.clock,
		ctx:       context.WithoutCancel(ctx),
		profile:   profile.Clone(),
		saveState: SaveStateSaved,
		syncState: SyncStateIdle,
		debouncer: debounce.New(cfg.clock, cfg.saveDelay),
	}

	opts := append([]backat.PickerOption{backat.WithClock(cfg.clock)}, cfg.pickerOptions...)
	d.picker = backat.NewPicker(profile.BackAt, d.OnTimeChange, opts...)
	d.expiry = clock.Every(cfg.clock, cfg.expiryInterval, d.checkExpiry)

	return d
}

// Picker returns the back-at picker owned by the session
func (d *Dashboard) Picker() *backat.Picker {
	return d.picker
}

// Profile returns the optimistic copy of the profile
func (d *Dashboard) Profile() *model.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.Clone()
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	v := DashboardView{
		Profile:     d.profile.Clone(),
		SaveState:   d.saveState,
		SyncState:   d.syncState,
		PendingSave: !d.pending.IsEmpty(),
		LastSync:    d.lastSync,
	}
	d.mu.Unlock()

	v.Picker = d.picker.View()
	return v
}

// SetStatus saves status immediately. Selecting available drops detail edits
// that are still waiting to be saved.
func (d *Dashboard) SetStatus(ctx context.Context, status types.StatusMode) (*StatusChange, error) {
	status = status.Normalize()
	if !status.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid status", goerr.V("status", status))
	}

	update := d.status.StatusUpdate(status)
	if status.IsAvailable() {
		d.dropPending()
	}

	return d.commit(ctx, update)
}

// dropPending cancels the detail edits that are waiting to be saved
func (d *Dashboard) dropPending() {
	d.debouncer.Cancel()
	d.mu.Lock()
	d.pending = model.ProfileUpdate{}
	d.mu.Unlock()
}

// EditDetails records detail edits and saves them together once no edit has
// arrived for the save delay. Edits are rejected while available.
func (d *Dashboard) EditDetails(update model.ProfileUpdate) error {
	update.Status = model.Patch[types.StatusMode]{}
	if update.IsEmpty() {
		return goerr.Wrap(ErrInvalidInput, "no detail fields to edit")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return goerr.Wrap(ErrDashboardClosed, "cannot edit details", goerr.V(UserIDKey, d.userID))
	}
	if d.profile.Status.Normalize().IsAvailable() {
		d.mu.Unlock()
		return goerr.Wrap(ErrDetailsWhileAvailable, "cannot edit details", goerr.V(UserIDKey, d.userID))
	}
	d.pending = d.pending.Merge(update)
	update.ApplyTo(d.profile, d.clock.Now())
	d.mu.Unlock()

	d.debouncer.Trigger(d.flush)
	return nil
}

// flush saves the coalesced detail edits
func (d *Dashboard) flush() {
	d.mu.Lock()
	if d.closed || d.pending.IsEmpty() {
		d.mu.Unlock()
		return
	}
	update := d.pending
	d.pending = model.ProfileUpdate{}
	d.mu.Unlock()

	if _, err := d.commitDetails(d.ctx, update); err != nil {
		_ = errutil.Handle(d.ctx, err, "failed to save details")
	}
}

func (d *Dashboard) commitDetails(ctx context.Context, update model.ProfileUpdate) (*StatusChange, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.setSaveState(SaveStateSaving)
	change, err := d.status.SaveDetails(ctx, d.userID, update)
	return d.finish(ctx, change, err)
}

func (d *Dashboard) commit(ctx context.Context, update model.ProfileUpdate) (*StatusChange, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	// picker commits queued before this call are saved first
	d.saveQueuedLocked(ctx)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, goerr.Wrap(ErrDashboardClosed, "cannot save status", goerr.V(UserIDKey, d.userID))
	}
	// apply optimistically so the view reflects the change while saving
	update.ApplyTo(d.profile, d.clock.Now())
	d.saveState = SaveStateSaving
	d.mu.Unlock()

	return d.saveLocked(ctx, update)
}

// saveLocked persists update and propagates the result. writeMu must be held.
func (d *Dashboard) saveLocked(ctx context.Context, update model.ProfileUpdate) (*StatusChange, error) {
	profile, err := d.status.Save(ctx, d.userID, d.withDefaults(update))
	if err != nil {
		d.setSaveState(SaveStateFailed)
		return nil, err
	}

	d.mu.Lock()
	d.profile = profile.Clone()
	d.saveState = SaveStateSaved
	d.syncState = SyncStateSyncing
	d.mu.Unlock()

	results := d.status.Propagate(ctx, profile)

	d.mu.Lock()
	d.syncState = SyncStateSynced
	d.lastSync = results
	d.mu.Unlock()

	return &StatusChange{Profile: profile, Synced: results}, nil
}

// enqueue applies update to the optimistic copy and saves it in the
// background. Queued updates are saved in the order they were enqueued.
func (d *Dashboard) enqueue(update model.ProfileUpdate, failure string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	update.ApplyTo(d.profile, d.clock.Now())
	d.saveState = SaveStateSaving
	d.queue = append(d.queue, queuedCommit{update: update, failure: failure})
	start := !d.draining
	d.draining = true
	d.mu.Unlock()

	if start {
		d.commits.Dispatch(d.ctx, d.drain)
	}
}

func (d *Dashboard) drain(ctx context.Context) error {
	for {
		d.writeMu.Lock()
		job, ok := d.popQueued()
		if !ok {
			d.writeMu.Unlock()
			return nil
		}
		_, err := d.saveLocked(ctx, job.update)
		d.writeMu.Unlock()

		if err != nil {
			_ = errutil.Handle(ctx, err, job.failure)
		}
	}
}

// saveQueuedLocked saves every queued commit. writeMu must be held.
func (d *Dashboard) saveQueuedLocked(ctx context.Context) {
	for {
		job, ok := d.popQueued()
		if !ok {
			return
		}
		if _, err := d.saveLocked(ctx, job.update); err != nil {
			_ = errutil.Handle(ctx, err, job.failure)
		}
	}
}

// popQueued takes the oldest queued commit. The queue is dropped once the
// session is closed.
func (d *Dashboard) popQueued() (queuedCommit, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || len(d.queue) == 0 {
		d.queue = nil
		d.draining = false
		return queuedCommit{}, false
	}
	job := d.queue[0]
	d.queue = d.queue[1:]
	return job, true
}

// Wait blocks until the picker commits queued so far have been saved
func (d *Dashboard) Wait(ctx context.Context) error {
	return d.commits.Wait(ctx)
}

// withDefaults adds the response defaults of the target status to update
func (d *Dashboard) withDefaults(update model.ProfileUpdate) model.ProfileUpdate {
	status, ok := update.Status.Value()
	if !ok {
		return update
	}
	return update.Merge(d.status.StatusUpdate(status.Normalize()))
}

// finish records the outcome of a SaveDetails call, which persists and syncs in one step
func (d *Dashboard) finish(ctx context.Context, change *StatusChange, err error) (*StatusChange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.saveState = SaveStateFailed
		return nil, err
	}
	d.profile = change.Profile.Clone()
	d.saveState = SaveStateSaved
	d.syncState = SyncStateSynced
	d.lastSync = change.Synced
	return change, nil
}

func (d *Dashboard) setSaveState(s SaveState) {
	d.mu.Lock()
	d.saveState = s
	d.mu.Unlock()
}

// OnTimeChange receives committed return times from the picker. A time strictly
// after now puts an available profile into qoit mode, or updates the return
// time of a non-available one. Anything else returns the profile to available.
// The optimistic copy changes before OnTimeChange returns; saving and syncing
// happen in the background.
func (d *Dashboard) OnTimeChange(backAt *time.Time) {
	now := d.clock.Now()
	logger := logging.From(d.ctx)

	if backAt == nil || !backAt.After(now) {
		d.dropPending()
		d.enqueue(d.status.StatusUpdate(types.StatusAvailable), "failed to return to available")
		return
	}

	d.mu.Lock()
	available := d.profile.Status.Normalize().IsAvailable()
	d.mu.Unlock()

	if available {
		d.debouncer.Cancel()
		d.mu.Lock()
		update := d.pending.Merge(model.ProfileUpdate{
			Status: model.Set(types.StatusQoit),
			BackAt: model.Set(*backAt),
		})
		d.pending = model.ProfileUpdate{}
		d.mu.Unlock()

		d.enqueue(update, "failed to enter qoit mode")
		return
	}

	if err := d.EditDetails(model.ProfileUpdate{BackAt: model.Set(*backAt)}); err != nil {
		if !errors.Is(err, ErrDashboardClosed) {
			_ = errutil.Handle(d.ctx, err, "failed to update return time")
		}
		return
	}
	logger.Debug("Return time updated", "user_id", d.userID, "back_at", *backAt)
}

// checkExpiry returns the profile to available once its return time passes
func (d *Dashboard) checkExpiry() {
	now := d.clock.Now()

	d.mu.Lock()
	if d.closed || d.expiring || !d.profile.IsExpired(now) {
		d.mu.Unlock()
		return
	}
	d.expiring = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.expiring = false
		d.mu.Unlock()
	}()

	logging.From(d.ctx).Info("Return time passed", "user_id", d.userID)
	if _, err := d.SetStatus(d.ctx, types.StatusAvailable); err != nil && !errors.Is(err, ErrDashboardClosed) {
		_ = errutil.Handle(d.ctx, err, "failed to expire status")
	}
}

// Close cancels the pending save, the expiry watch and the picker. No
// callback of the session runs afterwards.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.debouncer.Close()
	d.expiry.Stop()
	d.picker.Close()
}

// DashboardUseCase keeps one session per user
type DashboardUseCase struct {
	repo   interfaces.Repository
	status *StatusUseCase
	cfg    dashboardConfig

	mu       sync.Mutex
	sessions map[string]*Dashboard
}

func newDashboardUseCase(repo interfaces.Repository, status *StatusUseCase, cfg dashboardConfig) *DashboardUseCase {
	return &DashboardUseCase{
		repo:     repo,
		status:   status,
		cfg:      cfg,
		sessions: make(map[string]*Dashboard),
	}
}

// Open returns the session of userID, loading the profile on first use
func (uc *DashboardUseCase) Open(ctx context.Context, userID string) (*Dashboard, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if d, ok := uc.sessions[userID]; ok {
		return d, nil
	}

	profile, err := uc.repo.Profile().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to open dashboard", goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to open dashboard", goerr.V(UserIDKey, userID))
	}

	d := newDashboard(ctx, profile, uc.status, uc.cfg)
	uc.sessions[userID] = d
	return d, nil
}

// Wait blocks until every open session has saved its queued picker commits
func (uc *DashboardUseCase) Wait(ctx context.Context) error {
	uc.mu.Lock()
	sessions := make([]*Dashboard, 0, len(uc.sessions))
	for _, d := range uc.sessions {
		sessions = append(sessions, d)
	}
	uc.mu.Unlock()

	for _, d := range sessions {
		if err := d.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Release closes and forgets the session of userID
func (uc *DashboardUseCase) Release(userID string) {
	uc.mu.Lock()
	d, ok := uc.sessions[userID]
	delete(uc.sessions, userID)
	uc.mu.Unlock()

	if ok {
		d.Close()
	}
}

// Close closes every session
func (uc *DashboardUseCase) Close() {
	uc.mu.Lock()
	sessions := uc.sessions
	uc.sessions = make(map[string]*Dashboard)
	uc.mu.Unlock()

	for _, d := range sessions {
		d.Close()
	}
}
