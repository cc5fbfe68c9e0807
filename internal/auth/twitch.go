package auth

import (
	"context"
	"fmt"

	"github.com/nicklaw5/helix/v2"
	"golang.org/x/oauth2"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/model"
)

var twitchEndpoint = oauth2.Endpoint{
	AuthURL:   "https://id.twitch.tv/oauth2/authorize",
	TokenURL:  "https://id.twitch.tv/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// TwitchProvider uses the helix client with the freshly issued user token.
// The follower total stands in for the subscriber count.
type TwitchProvider struct {
	config *oauth2.Config
	// apiBase overrides the helix base URL; empty means the public API.
	apiBase string
}

func NewTwitchProvider(c config.OAuthClient) *TwitchProvider {
	return &TwitchProvider{
		config: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Scopes:       []string{"user:read:email", "moderator:read:followers"},
			Endpoint:     twitchEndpoint,
		},
	}
}

func (p *TwitchProvider) Name() model.Provider { return model.ProviderTwitch }

func (p *TwitchProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *TwitchProvider) Exchange(ctx context.Context, code, state string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: twitch: exchanging code: %w", err)
	}

	client, err := helix.NewClient(&helix.Options{
		ClientID:        p.config.ClientID,
		ClientSecret:    p.config.ClientSecret,
		UserAccessToken: token.AccessToken,
		RefreshToken:    token.RefreshToken,
		APIBaseURL:      p.apiBase,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: twitch: creating client: %w", err)
	}

	users, err := client.GetUsers(&helix.UsersParams{})
	if err != nil {
		return nil, fmt.Errorf("auth: twitch: getting user: %w", err)
	}
	if users.ErrorMessage != "" {
		return nil, fmt.Errorf("auth: twitch: getting user: %s", users.ErrorMessage)
	}
	if len(users.Data.Users) == 0 {
		return nil, fmt.Errorf("auth: twitch: %w", ErrNoProfile)
	}
	user := users.Data.Users[0]

	follows, err := client.GetChannelFollows(&helix.GetChannelFollowsParams{BroadcasterID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("auth: twitch: getting followers: %w", err)
	}
	if follows.ErrorMessage != "" {
		return nil, fmt.Errorf("auth: twitch: getting followers: %s", follows.ErrorMessage)
	}

	return &Profile{
		Provider:          model.ProviderTwitch,
		ProviderAccountID: user.ID,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		ProfileName:       user.DisplayName,
		ProfileImage:      user.ProfileImageURL,
		SubscriberCount:   int64(follows.Data.Total),
	}, nil
}
