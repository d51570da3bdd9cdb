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

const (
	profilesCollection  = "profiles"
	usernamesCollection = "usernames"
)

type profileRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ProfileRepository = &profileRepository{}

func newProfileRepository(client *firestore.Client) *profileRepository {
	return &profileRepository{client: client}
}

// profileDoc is the Firestore persistence model
type profileDoc struct {
	ID                string     `firestore:"id"`
	Username          string     `firestore:"username"`
	DisplayName       string     `firestore:"display_name"`
	Title             string     `firestore:"title"`
	AvatarURL         string     `firestore:"avatar_url"`
	Email             string     `firestore:"email"`
	PersonalNote      string     `firestore:"personal_note"`
	Status            string     `firestore:"status"`
	StatusMessage     *string    `firestore:"status_message"`
	BackAt            *time.Time `firestore:"back_at"`
	EmailResponseTime string     `firestore:"email_response_time"`
	DMResponseTime    string     `firestore:"dm_response_time"`
	UrgentMethod      string     `firestore:"urgent_method"`
	CreatedAt         time.Time  `firestore:"created_at"`
	UpdatedAt         time.Time  `firestore:"updated_at"`
}

type usernameDoc struct {
	UserID string `firestore:"user_id"`
}

func (r *profileRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, profilesCollection))
}

func (r *profileRepository) usernames() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, usernamesCollection))
}

func toProfileDoc(p *model.Profile) *profileDoc {
	return &profileDoc{
		ID:                p.ID,
		Username:          p.Username,
		DisplayName:       p.DisplayName,
		Title:             p.Title,
		AvatarURL:         p.AvatarURL,
		Email:             p.Email,
		PersonalNote:      p.PersonalNote,
		Status:            p.Status.Normalize().String(),
		StatusMessage:     p.StatusMessage,
		BackAt:            p.BackAt,
		EmailResponseTime: p.EmailResponseTime,
		DMResponseTime:    p.DMResponseTime,
		UrgentMethod:      p.UrgentMethod,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func fromProfileDoc(d *profileDoc) *model.Profile {
	p := &model.Profile{
		ID:                d.ID,
		Username:          d.Username,
		DisplayName:       d.DisplayName,
		Title:             d.Title,
		AvatarURL:         d.AvatarURL,
		Email:             d.Email,
		PersonalNote:      d.PersonalNote,
		Status:            types.StatusMode(d.Status).Normalize(),
		StatusMessage:     d.StatusMessage,
		EmailResponseTime: d.EmailResponseTime,
		DMResponseTime:    d.DMResponseTime,
		UrgentMethod:      d.UrgentMethod,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.BackAt != nil {
		at := d.BackAt.UTC()
		p.BackAt = &at
	}
	return p
}

func decodeProfile(snap *firestore.DocumentSnapshot) (*model.Profile, error) {
	var d profileDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal profile", goerr.V("docID", snap.Ref.ID))
	}
	return fromProfileDoc(&d), nil
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	snap, err := r.collection().Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "profile not found", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V("user_id", userID))
	}
	return decodeProfile(snap)
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	snap, err := r.usernames().Doc(username).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "profile not found", goerr.V("username", username))
		}
		return nil, goerr.Wrap(err, "failed to resolve username", goerr.V("username", username))
	}

	var u usernameDoc
	if err := snap.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal username", goerr.V("username", username))
	}
	return r.Get(ctx, u.UserID)
}

// Create stores the profile and claims its username in one transaction
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid profile")
	}

	now := time.Now().UTC()
	created := profile.Clone()
	created.Status = created.Status.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	profileRef := r.collection().Doc(created.ID)
	usernameRef := r.usernames().Doc(created.Username)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(profileRef); err == nil {
			return goerr.Wrap(ErrAlreadyExists, "profile already exists", goerr.V("user_id", created.ID))
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check profile")
		}

		if _, err := tx.Get(usernameRef); err == nil {
			return goerr.Wrap(ErrAlreadyExists, "username is taken", goerr.V("username", created.Username))
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check username")
		}

		if err := tx.Create(usernameRef, &usernameDoc{UserID: created.ID}); err != nil {
			return goerr.Wrap(err, "failed to claim username")
		}
		return tx.Create(profileRef, toProfileDoc(created))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create profile", goerr.V("user_id", created.ID))
	}

	return created, nil
}

// Update applies the partial update inside a transaction so that status and
// its cleared fields land in the same write
func (r *profileRepository) Update(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid profile update", goerr.V("user_id", userID))
	}

	ref := r.collection().Doc(userID)
	var updated *model.Profile

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "profile not found", goerr.V("user_id", userID))
			}
			return goerr.Wrap(err, "failed to get profile", goerr.V("user_id", userID))
		}

		current, err := decodeProfile(snap)
		if err != nil {
			return err
		}
		update.ApplyTo(current, time.Now().UTC())
		updated = current

		return tx.Set(ref, toProfileDoc(current))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update profile", goerr.V("user_id", userID))
	}

	return updated, nil
}

func (r *profileRepository) ListExpired(ctx context.Context, now time.Time) ([]*model.Profile, error) {
	counting := []string{
		types.StatusQoit.String(),
		types.StatusFocused.String(),
		types.StatusAway.String(),
	}

	iter := r.collection().
		Where("status", "in", counting).
		Where("back_at", "<=", now).
		OrderBy("back_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var profiles []*model.Profile
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate expired profiles")
		}

		p, err := decodeProfile(snap)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}
