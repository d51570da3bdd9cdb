package slack

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// Provider mirrors a status to the Slack custom status and presence of the
// connected user. The user token is taken from each integration.
type Provider struct {
	apiURL     string
	httpClient *http.Client
	now        func() time.Time
}

var _ interfaces.SyncProvider = &Provider{}

// Option is a functional option for Provider configuration
type Option func(*Provider)

// WithAPIURL overrides the Slack Web API base URL. The URL must end with a slash.
func WithAPIURL(url string) Option {
	return func(p *Provider) {
		p.apiURL = url
	}
}

// WithHTTPClient sets the HTTP client used for Slack API calls
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithNow replaces the time source
func WithNow(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// New creates a new Slack sync provider
func New(opts ...Option) *Provider {
	p := &Provider{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Type() types.IntegrationType {
	return types.IntegrationSlack
}

func (p *Provider) client(token string) *slack.Client {
	opts := []slack.Option{}
	if p.apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(p.apiURL))
	}
	if p.httpClient != nil {
		opts = append(opts, slack.OptionHTTPClient(p.httpClient))
	}
	return slack.New(token, opts...)
}

// Sync sets the custom status first. A failed presence update is logged and
// does not fail the sync.
func (p *Provider) Sync(ctx context.Context, integration *model.Integration, req *model.SyncRequest) model.SyncResult {
	logger := logging.From(ctx).With("integration", types.IntegrationSlack)

	if integration.AccessToken == "" {
		return model.SyncFailed("No access token")
	}

	profile := BuildProfile(req, p.now())
	api := p.client(integration.AccessToken)

	if err := api.SetUserCustomStatusContext(ctx, profile.Text, profile.Emoji, profile.Expiration); err != nil {
		logger.Error("Slack profile status update failed", "error", err)
		return model.SyncFailed(errorMessage(err))
	}

	if err := api.SetUserPresenceContext(ctx, profile.Presence); err != nil {
		logger.Warn("Slack presence update failed", "error", err, "presence", profile.Presence)
	}

	return model.SyncSucceeded()
}

// errorMessage returns the Slack error code for API errors and a generic
// message for transport failures
func errorMessage(err error) string {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.Err
	}
	return "Network error"
}
