package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const integrationsCollection = "integrations"

type integrationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.IntegrationRepository = &integrationRepository{}

func newIntegrationRepository(client *firestore.Client) *integrationRepository {
	return &integrationRepository{client: client}
}

type integrationDoc struct {
	ID           string     `firestore:"id"`
	UserID       string     `firestore:"user_id"`
	Type         string     `firestore:"type"`
	AccessToken  string     `firestore:"access_token"`
	RefreshToken string     `firestore:"refresh_token"`
	ExpiresAt    *time.Time `firestore:"expires_at"`
	TeamID       string     `firestore:"team_id"`
	TeamName     string     `firestore:"team_name"`
	Scope        string     `firestore:"scope"`
	IsActive     bool       `firestore:"is_active"`
	CreatedAt    time.Time  `firestore:"created_at"`
	UpdatedAt    time.Time  `firestore:"updated_at"`
}

func (r *integrationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, integrationsCollection))
}

// doc returns the reference keyed by (user, type), which enforces uniqueness
func (r *integrationRepository) doc(userID string, t types.IntegrationType) *firestore.DocumentRef {
	return r.collection().Doc(userID + "_" + t.String())
}

func toIntegrationDoc(i *model.Integration) *integrationDoc {
	return &integrationDoc{
		ID:           string(i.ID),
		UserID:       i.UserID,
		Type:         i.Type.String(),
		AccessToken:  i.AccessToken,
		RefreshToken: i.RefreshToken,
		ExpiresAt:    i.ExpiresAt,
		TeamID:       i.TeamID,
		TeamName:     i.TeamName,
		Scope:        i.Scope,
		IsActive:     i.IsActive,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func fromIntegrationDoc(d *integrationDoc) *model.Integration {
	i := &model.Integration{
		ID:           model.IntegrationID(d.ID),
		UserID:       d.UserID,
		Type:         types.IntegrationType(d.Type),
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		TeamID:       d.TeamID,
		TeamName:     d.TeamName,
		Scope:        d.Scope,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.ExpiresAt != nil {
		at := d.ExpiresAt.UTC()
		i.ExpiresAt = &at
	}
	return i
}

func (r *integrationRepository) List(ctx context.Context, userID string, activeOnly bool) ([]*model.Integration, error) {
	q := r.collection().Where("user_id", "==", userID)
	if activeOnly {
		q = q.Where("is_active", "==", true)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	found := make(map[types.IntegrationType]*model.Integration)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate integrations", goerr.V("user_id", userID))
		}

		var d integrationDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal integration", goerr.V("docID", snap.Ref.ID))
		}
		i := fromIntegrationDoc(&d)
		found[i.Type] = i
	}

	result := make([]*model.Integration, 0, len(found))
	for _, t := range types.AllIntegrationTypes() {
		if i, ok := found[t]; ok {
			result = append(result, i)
		}
	}
	return result, nil
}

func (r *integrationRepository) Get(ctx context.Context, userID string, integrationType types.IntegrationType) (*model.Integration, error) {
	snap, err := r.doc(userID, integrationType).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "integration not found",
				goerr.V("user_id", userID),
				goerr.V("type", integrationType))
		}
		return nil, goerr.Wrap(err, "failed to get integration", goerr.V("user_id", userID))
	}

	var d integrationDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal integration", goerr.V("docID", snap.Ref.ID))
	}
	return fromIntegrationDoc(&d), nil
}

func (r *integrationRepository) Upsert(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	if err := integration.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid integration")
	}

	ref := r.doc(integration.UserID, integration.Type)
	stored := integration.Clone()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC()
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var existing integrationDoc
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal integration")
			}
			stored.ID = model.IntegrationID(existing.ID)
			stored.CreatedAt = existing.CreatedAt
		case status.Code(err) == codes.NotFound:
			if stored.ID == "" {
				stored.ID = model.NewIntegrationID()
			}
			stored.CreatedAt = now
		default:
			return goerr.Wrap(err, "failed to get integration")
		}
		stored.UpdatedAt = now

		return tx.Set(ref, toIntegrationDoc(stored))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert integration",
			goerr.V("user_id", integration.UserID),
			goerr.V("type", integration.Type))
	}

	return stored, nil
}

func (r *integrationRepository) Delete(ctx context.Context, userID string, integrationType types.IntegrationType) error {
	ref := r.doc(userID, integrationType)

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "integration not found",
				goerr.V("user_id", userID),
				goerr.V("type", integrationType))
		}
		return goerr.Wrap(err, "failed to get integration", goerr.V("user_id", userID))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete integration",
			goerr.V("user_id", userID),
			goerr.V("type", integrationType))
	}
	return nil
}
