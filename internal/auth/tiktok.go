package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/model"
)

const tiktokAPIBase = "https://open.tiktokapis.com"

// TikTokProvider follows TikTok's v2 login kit, which names the client id
// "client_key" on both the authorize and token calls.
type TikTokProvider struct {
	config  *oauth2.Config
	apiBase string
}

func NewTikTokProvider(c config.OAuthClient) *TikTokProvider {
	return &TikTokProvider{
		config: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			// One comma-separated entry: TikTok does not accept space-separated scopes.
			Scopes: []string{"user.info.basic,user.info.stats"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://www.tiktok.com/v2/auth/authorize/",
				TokenURL:  tiktokAPIBase + "/v2/oauth/token/",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: tiktokAPIBase,
	}
}

func (p *TikTokProvider) Name() model.Provider { return model.ProviderTikTok }

func (p *TikTokProvider) clientKey() oauth2.AuthCodeOption {
	return oauth2.SetAuthURLParam("client_key", p.config.ClientID)
}

func (p *TikTokProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, p.clientKey())
}

type tiktokUserInfo struct {
	Data struct {
		User struct {
			OpenID        string `json:"open_id"`
			DisplayName   string `json:"display_name"`
			AvatarURL     string `json:"avatar_url"`
			FollowerCount int64  `json:"follower_count"`
		} `json:"user"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *TikTokProvider) Exchange(ctx context.Context, code, state string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code, p.clientKey())
	if err != nil {
		return nil, fmt.Errorf("auth: tiktok: exchanging code: %w", err)
	}

	var body tiktokUserInfo
	url := p.apiBase + "/v2/user/info/?fields=open_id,display_name,avatar_url,follower_count"
	if err := getJSON(ctx, p.config.Client(ctx, token), url, &body); err != nil {
		return nil, fmt.Errorf("auth: tiktok: %w", err)
	}
	if body.Error.Code != "" && body.Error.Code != "ok" {
		return nil, fmt.Errorf("auth: tiktok: user info: %s: %s", body.Error.Code, body.Error.Message)
	}

	user := body.Data.User
	if user.OpenID == "" {
		// The token response carries open_id too; prefer it when user info omits it.
		if openID, ok := token.Extra("open_id").(string); ok {
			user.OpenID = openID
		}
	}
	if user.OpenID == "" {
		return nil, fmt.Errorf("auth: tiktok: %w", ErrNoProfile)
	}

	return &Profile{
		Provider:          model.ProviderTikTok,
		ProviderAccountID: user.OpenID,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		ProfileName:       user.DisplayName,
		ProfileImage:      user.AvatarURL,
		SubscriberCount:   user.FollowerCount,
	}, nil
}
