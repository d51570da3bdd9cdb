package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

// DefaultAppURL is the public base URL used for the webhook avatar
const DefaultAppURL = "https://qoit.page"

// Provider announces status changes through a Discord channel webhook. The
// webhook URL is stored as the integration access token.
type Provider struct {
	appURL     string
	httpClient *http.Client
	location   *time.Location
	now        func() time.Time
}

var _ interfaces.SyncProvider = &Provider{}

// Option is a functional option for Provider configuration
type Option func(*Provider)

// WithAppURL sets the public base URL of the application
func WithAppURL(url string) Option {
	return func(p *Provider) {
		p.appURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets the HTTP client used for webhook calls
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithLocation sets the time zone used to display the return time
func WithLocation(loc *time.Location) Option {
	return func(p *Provider) {
		p.location = loc
	}
}

// WithNow replaces the time source
func WithNow(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// New creates a new Discord sync provider
func New(opts ...Option) *Provider {
	p := &Provider{
		appURL:   DefaultAppURL,
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Type() types.IntegrationType {
	return types.IntegrationDiscord
}

func (p *Provider) session() (*discordgo.Session, error) {
	s, err := discordgo.New("")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create discord session")
	}
	if p.httpClient != nil {
		s.Client = p.httpClient
	}
	s.ShouldRetryOnRateLimit = false
	s.MaxRestRetries = 0
	return s, nil
}

func (p *Provider) Sync(ctx context.Context, integration *model.Integration, req *model.SyncRequest) model.SyncResult {
	logger := logging.From(ctx).With("integration", types.IntegrationDiscord)

	id, token, ok := ParseWebhookURL(integration.AccessToken)
	if !ok {
		return model.SyncFailed("No valid webhook URL")
	}

	s, err := p.session()
	if err != nil {
		logger.Error("Discord session setup failed", "error", err)
		return model.SyncFailed("Network error")
	}

	params := &discordgo.WebhookParams{
		Username:  webhookUsername,
		AvatarURL: p.appURL + "/favicon.ico",
		Embeds:    []*discordgo.MessageEmbed{BuildEmbed(req, p.now(), p.location)},
	}

	if _, err := s.WebhookExecute(id, token, false, params, discordgo.WithContext(ctx)); err != nil {
		logger.Error("Discord webhook failed", "error", err)
		return model.SyncFailed(errorMessage(err))
	}

	return model.SyncSucceeded()
}

func errorMessage(err error) string {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return fmt.Sprintf("Webhook failed: %d", restErr.Response.StatusCode)
	}
	return "Network error"
}
