package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/model"
)

type messageRepository struct {
	mu       sync.RWMutex
	messages map[string]map[model.MessageID]*model.Message
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		messages: make(map[string]map[model.MessageID]*model.Message),
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid message")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := *msg
	if created.ID == "" {
		created.ID = model.NewMessageID()
	}
	created.IsRead = false
	created.CreatedAt = time.Now().UTC()

	if _, ok := r.messages[created.ProfileID]; !ok {
		r.messages[created.ProfileID] = make(map[model.MessageID]*model.Message)
	}
	r.messages[created.ProfileID][created.ID] = &created

	result := created
	return &result, nil
}

func (r *messageRepository) List(ctx context.Context, profileID string) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Message, 0, len(r.messages[profileID]))
	for _, m := range r.messages[profileID] {
		c := *m
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, profileID string, id model.MessageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[profileID][id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "message not found", goerr.V("message_id", id))
	}
	m.IsRead = true
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, profileID string, id model.MessageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[profileID][id]; !ok {
		return goerr.Wrap(ErrNotFound, "message not found", goerr.V("message_id", id))
	}
	delete(r.messages[profileID], id)
	return nil
}
