package usecase

import (
	"time"

	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model/backat"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/clock"
)

type UseCases struct {
	repo           interfaces.Repository
	providers      []interfaces.SyncProvider
	syncTimeout    time.Duration
	statusDefaults map[types.StatusMode]types.ResponseDefaults
	dashboard      dashboardConfig

	Sync        *SyncUseCase
	Status      *StatusUseCase
	Dashboard   *DashboardUseCase
	Profile     *ProfileUseCase
	Message     *MessageUseCase
	Integration *IntegrationUseCase
	Auth        AuthUseCaseInterface
}

type Option func(*UseCases)

func WithSyncProviders(providers ...interfaces.SyncProvider) Option {
	return func(uc *UseCases) {
		uc.providers = append(uc.providers, providers...)
	}
}

func WithSyncTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.syncTimeout = d
	}
}

// WithStatusDefaults overrides the response-time defaults of the given modes
func WithStatusDefaults(defaults map[types.StatusMode]types.ResponseDefaults) Option {
	return func(uc *UseCases) {
		uc.statusDefaults = defaults
	}
}

func WithClock(c clock.Clock) Option {
	return func(uc *UseCases) {
		uc.dashboard.clock = c
	}
}

// WithSaveDelay sets the quiet period of dashboard detail edits
func WithSaveDelay(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.dashboard.saveDelay = d
	}
}

func WithExpiryCheckInterval(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.dashboard.expiryInterval = d
	}
}

func WithPickerOptions(opts ...backat.PickerOption) Option {
	return func(uc *UseCases) {
		uc.dashboard.pickerOptions = append(uc.dashboard.pickerOptions, opts...)
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		syncTimeout: DefaultSyncTimeout,
		dashboard: dashboardConfig{
			clock:          clock.New(),
			saveDelay:      DefaultSaveDelay,
			expiryInterval: DefaultExpiryCheckInterval,
		},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Sync = NewSyncUseCase(repo, uc.providers, uc.syncTimeout)
	uc.Status = NewStatusUseCase(repo, uc.Sync, uc.statusDefaults)
	uc.Dashboard = newDashboardUseCase(repo, uc.Status, uc.dashboard)
	uc.Profile = NewProfileUseCase(repo, uc.dashboard.clock)
	uc.Message = NewMessageUseCase(repo)
	uc.Integration = NewIntegrationUseCase(repo, uc.Sync)

	return uc
}

// Close ends every open dashboard session
func (uc *UseCases) Close() {
	uc.Dashboard.Close()
}
