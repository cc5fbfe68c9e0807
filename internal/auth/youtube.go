package auth

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/model"
)

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

// YouTubeProvider logs in with a Google account and reads the caller's own
// YouTube channel through the Data API.
type YouTubeProvider struct {
	config  *oauth2.Config
	apiBase string
}

func NewYouTubeProvider(c config.OAuthClient) *YouTubeProvider {
	return &YouTubeProvider{
		config: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
			Endpoint:     endpoints.Google,
		},
		apiBase: youtubeAPIBase,
	}
}

func (p *YouTubeProvider) Name() model.Provider { return model.ProviderYouTube }

// AuthURL asks for offline access so Google returns a refresh token.
func (p *YouTubeProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

type youtubeChannels struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			// The Data API encodes counts as strings.
			SubscriberCount       string `json:"subscriberCount"`
			HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (p *YouTubeProvider) Exchange(ctx context.Context, code, state string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: youtube: exchanging code: %w", err)
	}

	var body youtubeChannels
	url := p.apiBase + "/channels?part=snippet,statistics&mine=true"
	if err := getJSON(ctx, p.config.Client(ctx, token), url, &body); err != nil {
		return nil, fmt.Errorf("auth: youtube: %w", err)
	}
	if len(body.Items) == 0 {
		return nil, fmt.Errorf("auth: youtube: %w", ErrNoProfile)
	}

	ch := body.Items[0]
	var subscribers int64
	if !ch.Statistics.HiddenSubscriberCount && ch.Statistics.SubscriberCount != "" {
		subscribers, err = strconv.ParseInt(ch.Statistics.SubscriberCount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("auth: youtube: parsing subscriber count %q: %w", ch.Statistics.SubscriberCount, err)
		}
	}

	return &Profile{
		Provider:          model.ProviderYouTube,
		ProviderAccountID: ch.ID,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		ProfileName:       ch.Snippet.Title,
		ProfileImage:      ch.Snippet.Thumbnails.Default.URL,
		SubscriberCount:   subscribers,
	}, nil
}
