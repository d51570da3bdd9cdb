package http

import (
	"time"

	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/model/backat"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

type profileResponse struct {
	ID                string           `json:"id,omitempty"`
	Username          string           `json:"username"`
	DisplayName       string           `json:"display_name"`
	Title             string           `json:"title,omitempty"`
	AvatarURL         string           `json:"avatar_url,omitempty"`
	Email             string           `json:"email,omitempty"`
	PersonalNote      string           `json:"personal_note,omitempty"`
	Status            types.StatusMode `json:"status"`
	StatusMessage     *string          `json:"status_message"`
	BackAt            *time.Time       `json:"back_at"`
	EmailResponseTime string           `json:"email_response_time"`
	DMResponseTime    string           `json:"dm_response_time"`
	UrgentMethod      string           `json:"urgent_method"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// toProfileResponse converts p. Owner-only fields are dropped for visitors.
func toProfileResponse(p *model.Profile, owner bool) profileResponse {
	resp := profileResponse{
		Username:          p.Username,
		DisplayName:       p.DisplayName,
		Title:             p.Title,
		AvatarURL:         p.AvatarURL,
		PersonalNote:      p.PersonalNote,
		Status:            p.Status.Normalize(),
		StatusMessage:     p.StatusMessage,
		BackAt:            p.BackAt,
		EmailResponseTime: p.EmailResponseTime,
		DMResponseTime:    p.DMResponseTime,
		UrgentMethod:      p.UrgentMethod,
		UpdatedAt:         p.UpdatedAt,
	}
	if owner {
		resp.ID = p.ID
		resp.Email = p.Email
	}
	return resp
}

type countdownResponse struct {
	backat.Countdown
	Display string `json:"display"`
}

type publicProfileResponse struct {
	Profile     profileResponse        `json:"profile"`
	StatusLabel string                 `json:"status_label"`
	Countdown   *countdownResponse     `json:"countdown,omitempty"`
	Defaults    types.ResponseDefaults `json:"response_times"`
}

func toPublicProfileResponse(pub *usecase.PublicProfile) publicProfileResponse {
	resp := publicProfileResponse{
		Profile:     toProfileResponse(pub.Profile, false),
		StatusLabel: pub.StatusLabel,
		Defaults:    pub.Defaults,
	}
	if pub.Countdown != nil {
		resp.Countdown = &countdownResponse{Countdown: *pub.Countdown, Display: pub.Countdown.Display()}
	}
	return resp
}

type meResponse struct {
	Profile   profileResponse       `json:"profile"`
	Dashboard usecase.DashboardView `json:"dashboard"`
}

func toMeResponse(view usecase.DashboardView) meResponse {
	return meResponse{
		Profile:   toProfileResponse(view.Profile, true),
		Dashboard: view,
	}
}

type statusChangeResponse struct {
	Profile profileResponse   `json:"profile"`
	Synced  model.SyncResults `json:"synced"`
}

func toStatusChangeResponse(change *usecase.StatusChange) statusChangeResponse {
	synced := change.Synced
	if synced == nil {
		synced = model.SyncResults{}
	}
	return statusChangeResponse{
		Profile: toProfileResponse(change.Profile, true),
		Synced:  synced,
	}
}

type messageResponse struct {
	ID          model.MessageID `json:"id"`
	SenderName  string          `json:"sender_name"`
	SenderEmail string          `json:"sender_email,omitempty"`
	Content     string          `json:"content"`
	IsUrgent    bool            `json:"is_urgent"`
	IsRead      bool            `json:"is_read"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toMessageResponse(m *model.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		SenderName:  m.SenderName,
		SenderEmail: m.SenderEmail,
		Content:     m.Content,
		IsUrgent:    m.IsUrgent,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}
