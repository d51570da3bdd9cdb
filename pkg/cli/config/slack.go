package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/secmon-lab/qoit/pkg/service/slack"
	"github.com/slack-go/slack"
	"github.com/urfave/cli/v3"
)

// SlackUserInfo holds user information retrieved from Slack API
type SlackUserInfo struct {
	ID    string
	Email string
	Name  string
}

type Slack struct {
	apiURL   string
	botToken string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Slack Web API base URL (ending with a slash)",
			Category:    "Slack",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("QOIT_SLACK_API_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for resolving the no-auth user)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("QOIT_SLACK_BOT_TOKEN"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api-url", x.apiURL),
		slog.Int("bot-token.len", len(x.botToken)),
	)
}

// Provider creates the Slack sync provider. User tokens come from each integration.
func (x *Slack) Provider() *slacksvc.Provider {
	var opts []slacksvc.Option
	if x.apiURL != "" {
		opts = append(opts, slacksvc.WithAPIURL(x.apiURL))
	}
	return slacksvc.New(opts...)
}

// HasBotToken reports whether Slack user lookups are possible
func (x *Slack) HasBotToken() bool {
	return x.botToken != ""
}

// GetSlackUserInfo retrieves user information from Slack API
func (x *Slack) GetSlackUserInfo(ctx context.Context, userID string) (*SlackUserInfo, error) {
	if x.botToken == "" {
		return nil, goerr.Wrap(ErrMissingNoAuthToken, "bot token is required to fetch user info")
	}

	var opts []slack.Option
	if x.apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(x.apiURL))
	}
	api := slack.New(x.botToken, opts...)
	user, err := api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user info from Slack", goerr.V("user_id", userID))
	}

	return &SlackUserInfo{
		ID:    user.ID,
		Email: user.Profile.Email,
		Name:  user.RealName,
	}, nil
}
