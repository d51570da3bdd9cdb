package memory

import (
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
)

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)

// Memory keeps every record in process memory. Used for development and tests.
type Memory struct {
	profile     *profileRepository
	integration *integrationRepository
	message     *messageRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		profile:     newProfileRepository(),
		integration: newIntegrationRepository(),
		message:     newMessageRepository(),
	}
}

func (m *Memory) Profile() interfaces.ProfileRepository {
	return m.profile
}

func (m *Memory) Integration() interfaces.IntegrationRepository {
	return m.integration
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) Close() error {
	return nil
}
