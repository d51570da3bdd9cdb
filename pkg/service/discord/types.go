package discord

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

// WebhookPrefix is the only accepted form of a webhook URL
const WebhookPrefix = "https://discord.com/api/webhooks/"

const (
	webhookUsername = "Qoit"
	embedFooter     = "qoit.page"
)

type embedStyle struct {
	Emoji string
	Title string
	Color int
}

var embedStyles = map[types.StatusMode]embedStyle{
	types.StatusAvailable: {Emoji: "✅", Title: "Back & Available", Color: 0x22c55e},
	types.StatusQoit:      {Emoji: "🌙", Title: "Qoit Mode", Color: 0x4a5d4a},
	types.StatusFocused:   {Emoji: "⚡", Title: "Deep Work", Color: 0xc9a962},
	types.StatusAway:      {Emoji: "✈️", Title: "Away", Color: 0xa85d5d},
}

// ParseWebhookURL splits a webhook URL into its ID and token
func ParseWebhookURL(raw string) (id, token string, ok bool) {
	rest, found := strings.CutPrefix(raw, WebhookPrefix)
	if !found {
		return "", "", false
	}
	rest, _, _ = strings.Cut(rest, "?")
	id, token, found = strings.Cut(strings.TrimSuffix(rest, "/"), "/")
	if !found || id == "" || token == "" || strings.Contains(token, "/") {
		return "", "", false
	}
	return id, token, true
}

// BuildEmbed renders the status announcement. The back-at field is shown for
// non-available statuses only, formatted in loc.
func BuildEmbed(req *model.SyncRequest, now time.Time, loc *time.Location) *discordgo.MessageEmbed {
	status := req.Status.Normalize()
	style := embedStyles[status]

	var fields []*discordgo.MessageEmbedField
	if req.DisplayName != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "👤 Who", Value: req.DisplayName, Inline: true})
	}
	if req.BackAt != nil && !status.IsAvailable() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "⏰ Back at",
			Value:  req.BackAt.In(loc).Format("3:04 PM"),
			Inline: true,
		})
	}
	if msg := req.Message(); msg != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "💬 Message", Value: msg})
	}

	return &discordgo.MessageEmbed{
		Title:     style.Emoji + " " + style.Title,
		Color:     style.Color,
		Fields:    fields,
		Timestamp: now.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
}
