package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

// Profile is the public status page of a single user
type Profile struct {
	ID                string // user ID issued by the upstream auth backend
	Username          string // unique, used in the public URL
	DisplayName       string
	Title             string
	AvatarURL         string
	Email             string
	PersonalNote      string
	Status            types.StatusMode
	StatusMessage     *string
	BackAt            *time.Time // nil while available
	EmailResponseTime string
	DMResponseTime    string
	UrgentMethod      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.StatusMessage != nil {
		msg := *p.StatusMessage
		c.StatusMessage = &msg
	}
	if p.BackAt != nil {
		at := *p.BackAt
		c.BackAt = &at
	}
	return &c
}

// ResponseDefaults returns the stored response-time fields, falling back to the
// initial defaults for fields that were never set
func (p *Profile) ResponseDefaults() types.ResponseDefaults {
	d := types.InitialResponseDefaults
	if p.EmailResponseTime != "" {
		d.EmailResponseTime = p.EmailResponseTime
	}
	if p.DMResponseTime != "" {
		d.DMResponseTime = p.DMResponseTime
	}
	if p.UrgentMethod != "" {
		d.UrgentMethod = p.UrgentMethod
	}
	return d
}

// SenderName returns the name used when announcing the profile to other services
func (p *Profile) SenderName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if prefix, _, ok := strings.Cut(p.Email, "@"); ok && prefix != "" {
		return prefix
	}
	return "Someone"
}

// IsExpired reports whether the profile is away from available with a return time
// that is not after now
func (p *Profile) IsExpired(now time.Time) bool {
	return !p.Status.Normalize().IsAvailable() && p.BackAt != nil && !p.BackAt.After(now)
}

// Validate checks the profile fields required on creation
func (p *Profile) Validate() error {
	if p.ID == "" {
		return goerr.Wrap(ErrMissingRequired, "profile ID is required")
	}
	if p.Username == "" {
		return goerr.Wrap(ErrMissingRequired, "username is required", goerr.V(ProfileIDKey, p.ID))
	}
	if p.Status != "" && !p.Status.IsValid() {
		return goerr.Wrap(ErrInvalidStatus, "invalid status", goerr.V(StatusKey, p.Status))
	}
	if p.Status.Normalize().IsAvailable() && (p.BackAt != nil || p.StatusMessage != nil) {
		return goerr.Wrap(ErrAvailableWithDetails, "available profile must not carry back-at or message",
			goerr.V(ProfileIDKey, p.ID))
	}
	return nil
}

// ProfileUpdate is a set of field changes persisted in one write
type ProfileUpdate struct {
	Status            Patch[types.StatusMode]
	StatusMessage     Patch[string]
	BackAt            Patch[time.Time]
	EmailResponseTime Patch[string]
	DMResponseTime    Patch[string]
	UrgentMethod      Patch[string]
	DisplayName       Patch[string]
	Title             Patch[string]
	AvatarURL         Patch[string]
	PersonalNote      Patch[string]
}

// IsEmpty reports whether the update changes nothing
func (u ProfileUpdate) IsEmpty() bool {
	return !u.Status.IsPresent() &&
		!u.StatusMessage.IsPresent() &&
		!u.BackAt.IsPresent() &&
		!u.EmailResponseTime.IsPresent() &&
		!u.DMResponseTime.IsPresent() &&
		!u.UrgentMethod.IsPresent() &&
		!u.DisplayName.IsPresent() &&
		!u.Title.IsPresent() &&
		!u.AvatarURL.IsPresent() &&
		!u.PersonalNote.IsPresent()
}

// Validate rejects updates that would leave a profile in an inconsistent state.
// Switching to available must clear the message and the return time in the same update.
func (u ProfileUpdate) Validate() error {
	if u.Status.IsNull() {
		return goerr.Wrap(ErrInvalidStatus, "status cannot be cleared")
	}
	status, ok := u.Status.Value()
	if !ok {
		return nil
	}
	if !status.IsValid() {
		return goerr.Wrap(ErrInvalidStatus, "invalid status", goerr.V(StatusKey, status))
	}
	if status.IsAvailable() && (!u.StatusMessage.IsNull() || !u.BackAt.IsNull()) {
		return goerr.Wrap(ErrAvailableWithDetails, "available status must clear message and back-at")
	}
	return nil
}

// ApplyTo writes the update into p and stamps UpdatedAt
func (u ProfileUpdate) ApplyTo(p *Profile, now time.Time) {
	u.Status.Apply(&p.Status)
	u.StatusMessage.ApplyPtr(&p.StatusMessage)
	u.BackAt.ApplyPtr(&p.BackAt)
	u.EmailResponseTime.Apply(&p.EmailResponseTime)
	u.DMResponseTime.Apply(&p.DMResponseTime)
	u.UrgentMethod.Apply(&p.UrgentMethod)
	u.DisplayName.Apply(&p.DisplayName)
	u.Title.Apply(&p.Title)
	u.AvatarURL.Apply(&p.AvatarURL)
	u.PersonalNote.Apply(&p.PersonalNote)
	p.UpdatedAt = now
}

// Merge returns u overlaid with every field present in next
func (u ProfileUpdate) Merge(next ProfileUpdate) ProfileUpdate {
	merged := u
	overlay(&merged.Status, next.Status)
	overlay(&merged.StatusMessage, next.StatusMessage)
	overlay(&merged.BackAt, next.BackAt)
	overlay(&merged.EmailResponseTime, next.EmailResponseTime)
	overlay(&merged.DMResponseTime, next.DMResponseTime)
	overlay(&merged.UrgentMethod, next.UrgentMethod)
	overlay(&merged.DisplayName, next.DisplayName)
	overlay(&merged.Title, next.Title)
	overlay(&merged.AvatarURL, next.AvatarURL)
	overlay(&merged.PersonalNote, next.PersonalNote)
	return merged
}

// TouchesDetails reports whether the update sets a message or a return time
func (u ProfileUpdate) TouchesDetails() bool {
	_, hasMsg := u.StatusMessage.Value()
	_, hasBackAt := u.BackAt.Value()
	return hasMsg || hasBackAt
}

func overlay[T any](dst *Patch[T], src Patch[T]) {
	if src.IsPresent() {
		*dst = src
	}
}
