package auth

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/model"
)

const instagramGraphBase = "https://graph.instagram.com"

type InstagramProvider struct {
	config  *oauth2.Config
	apiBase string
}

func NewInstagramProvider(c config.OAuthClient) *InstagramProvider {
	return &InstagramProvider{
		config: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Scopes:       []string{"instagram_business_basic"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://www.instagram.com/oauth/authorize",
				TokenURL:  "https://api.instagram.com/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: instagramGraphBase,
	}
}

func (p *InstagramProvider) Name() model.Provider { return model.ProviderInstagram }

func (p *InstagramProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type instagramMe struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowersCount    int64  `json:"followers_count"`
}

func (p *InstagramProvider) Exchange(ctx context.Context, code, state string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: instagram: exchanging code: %w", err)
	}

	q := url.Values{}
	q.Set("fields", "id,user_id,username,profile_picture_url,followers_count")
	q.Set("access_token", token.AccessToken)

	var me instagramMe
	if err := getJSON(ctx, p.config.Client(ctx, token), p.apiBase+"/me?"+q.Encode(), &me); err != nil {
		return nil, fmt.Errorf("auth: instagram: %w", err)
	}

	id := me.UserID
	if id == "" {
		id = me.ID
	}
	if id == "" {
		return nil, fmt.Errorf("auth: instagram: %w", ErrNoProfile)
	}

	return &Profile{
		Provider:          model.ProviderInstagram,
		ProviderAccountID: id,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		ProfileName:       me.Username,
		ProfileImage:      me.ProfilePictureURL,
		SubscriberCount:   me.FollowersCount,
	}, nil
}
