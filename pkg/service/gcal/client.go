package gcal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Provider mirrors a status to the primary Google Calendar of the connected
// user as a busy event
type Provider struct {
	oauth      *oauth2.Config
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

var _ interfaces.SyncProvider = &Provider{}

// Option is a functional option for Provider configuration
type Option func(*Provider)

// WithEndpoint overrides the Calendar API base URL
func WithEndpoint(url string) Option {
	return func(p *Provider) {
		p.endpoint = url
	}
}

// WithTokenURL overrides the OAuth token endpoint used for refresh
func WithTokenURL(url string) Option {
	return func(p *Provider) {
		p.oauth.Endpoint.TokenURL = url
	}
}

// WithHTTPClient sets the base HTTP client for both API and token calls
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

// New creates a new Google Calendar sync provider. The client credentials are
// only needed to refresh expired access tokens.
func New(clientID, clientSecret string, opts ...Option) *Provider {
	p := &Provider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.Google,
			Scopes:       []string{calendar.CalendarEventsScope},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Type() types.IntegrationType {
	return types.IntegrationGoogleCalendar
}

func (p *Provider) baseContext(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}

// accessToken returns the stored token, refreshing it once when expired
func (p *Provider) accessToken(ctx context.Context, integration *model.Integration) (string, error) {
	if !integration.IsExpired(p.now()) {
		return integration.AccessToken, nil
	}

	if integration.RefreshToken == "" {
		return "", goerr.New("no refresh token")
	}
	if p.oauth.ClientID == "" || p.oauth.ClientSecret == "" {
		return "", goerr.New("google client credentials are not configured")
	}

	expired := &oauth2.Token{
		RefreshToken: integration.RefreshToken,
		Expiry:       *integration.ExpiresAt,
	}
	token, err := p.oauth.TokenSource(p.baseContext(ctx), expired).Token()
	if err != nil {
		return "", goerr.Wrap(err, "failed to refresh google token")
	}
	if token.AccessToken == "" {
		return "", goerr.New("refresh returned no access token")
	}
	return token.AccessToken, nil
}

func (p *Provider) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(p.baseContext(ctx), ts)),
	}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create calendar service")
	}
	return svc, nil
}

// Sync removes previously created events that have not ended yet and, unless
// the status is available, creates a new one. The refreshed token is used for
// this sync only.
func (p *Provider) Sync(ctx context.Context, integration *model.Integration, req *model.SyncRequest) model.SyncResult {
	logger := logging.From(ctx).With("integration", types.IntegrationGoogleCalendar)

	token, err := p.accessToken(ctx, integration)
	if err != nil {
		logger.Warn("Google token refresh failed", "error", err)
		return model.SyncFailed("Token expired and refresh failed")
	}

	svc, err := p.service(ctx, token)
	if err != nil {
		logger.Error("Google Calendar client setup failed", "error", err)
		return model.SyncFailed("Network error")
	}

	now := p.now()
	p.cleanup(ctx, svc, now)

	if req.Status.Normalize().IsAvailable() {
		return model.SyncSucceeded()
	}

	if _, err := svc.Events.Insert(primaryCalendar, BuildEvent(req, now)).Context(ctx).Do(); err != nil {
		logger.Error("Google Calendar event creation failed", "error", err)
		return model.SyncFailed(errorMessage(err))
	}

	return model.SyncSucceeded()
}

// cleanup is best effort: failures are logged and the sync continues
func (p *Provider) cleanup(ctx context.Context, svc *calendar.Service, now time.Time) {
	logger := logging.From(ctx)

	call := svc.Events.List(primaryCalendar).
		TimeMin(now.Add(-cleanupLookBehind).Format(time.RFC3339)).
		TimeMax(now.Add(cleanupLookAhead).Format(time.RFC3339)).
		Q(searchQuery).
		SingleEvents(true).
		Context(ctx)

	err := call.Pages(ctx, func(events *calendar.Events) error {
		for _, ev := range events.Items {
			if !strings.Contains(ev.Description, eventMarker) {
				continue
			}
			end, ok := eventEnd(ev)
			if !ok || !end.After(now) {
				continue
			}
			if err := svc.Events.Delete(primaryCalendar, ev.Id).Context(ctx).Do(); err != nil {
				logger.Warn("Failed to delete calendar event", "error", err, "event_id", ev.Id)
				continue
			}
			logger.Debug("Deleted calendar event", "event_id", ev.Id)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to clean up calendar events", "error", err)
	}
}

func errorMessage(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Network error"
}
