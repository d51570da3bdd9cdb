package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const messagesCollection = "messages"

type messageRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.MessageRepository = &messageRepository{}

func newMessageRepository(client *firestore.Client) *messageRepository {
	return &messageRepository{client: client}
}

type messageDoc struct {
	ID          string    `firestore:"id"`
	ProfileID   string    `firestore:"profile_id"`
	SenderName  string    `firestore:"sender_name"`
	SenderEmail string    `firestore:"sender_email"`
	Content     string    `firestore:"content"`
	IsUrgent    bool      `firestore:"is_urgent"`
	IsRead      bool      `firestore:"is_read"`
	CreatedAt   time.Time `firestore:"created_at"`
}

// messages returns the subcollection path: profiles/{profileID}/messages
func (r *messageRepository) messages(profileID string) *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, profilesCollection)).
		Doc(profileID).
		Collection(messagesCollection)
}

func toMessageDoc(m *model.Message) *messageDoc {
	return &messageDoc{
		ID:          string(m.ID),
		ProfileID:   m.ProfileID,
		SenderName:  m.SenderName,
		SenderEmail: m.SenderEmail,
		Content:     m.Content,
		IsUrgent:    m.IsUrgent,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

func fromMessageDoc(d *messageDoc) *model.Message {
	return &model.Message{
		ID:          model.MessageID(d.ID),
		ProfileID:   d.ProfileID,
		SenderName:  d.SenderName,
		SenderEmail: d.SenderEmail,
		Content:     d.Content,
		IsUrgent:    d.IsUrgent,
		IsRead:      d.IsRead,
		CreatedAt:   d.CreatedAt,
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid message")
	}

	created := *msg
	if created.ID == "" {
		created.ID = model.NewMessageID()
	}
	created.IsRead = false
	created.CreatedAt = time.Now().UTC()

	ref := r.messages(created.ProfileID).Doc(string(created.ID))
	if _, err := ref.Set(ctx, toMessageDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create message", goerr.V("profile_id", created.ProfileID))
	}

	return &created, nil
}

func (r *messageRepository) List(ctx context.Context, profileID string) ([]*model.Message, error) {
	iter := r.messages(profileID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Message, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages", goerr.V("profile_id", profileID))
		}

		var d messageDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message", goerr.V("docID", snap.Ref.ID))
		}
		result = append(result, fromMessageDoc(&d))
	}

	return result, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, profileID string, id model.MessageID) error {
	ref := r.messages(profileID).Doc(string(id))
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "is_read", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "message not found", goerr.V("message_id", id))
		}
		return goerr.Wrap(err, "failed to mark message read", goerr.V("message_id", id))
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, profileID string, id model.MessageID) error {
	ref := r.messages(profileID).Doc(string(id))

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "message not found", goerr.V("message_id", id))
		}
		return goerr.Wrap(err, "failed to get message", goerr.V("message_id", id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete message", goerr.V("message_id", id))
	}
	return nil
}
