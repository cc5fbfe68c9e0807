package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/model"
)

const (
	chzzkAuthURL = "https://chzzk.naver.com/account-interlock"
	chzzkAPIBase = "https://openapi.chzzk.naver.com"
)

// ChzzkProvider talks to the CHZZK open API. Its token endpoint takes a JSON
// body with camelCase fields and wraps every response in {code, content},
// so the exchange is done by hand instead of through oauth2.Config.
type ChzzkProvider struct {
	client  config.OAuthClient
	http    *http.Client
	authURL string
	apiBase string
}

func NewChzzkProvider(c config.OAuthClient) *ChzzkProvider {
	return &ChzzkProvider{
		client:  c,
		http:    http.DefaultClient,
		authURL: chzzkAuthURL,
		apiBase: chzzkAPIBase,
	}
}

func (p *ChzzkProvider) Name() model.Provider { return model.ProviderChzzk }

func (p *ChzzkProvider) AuthURL(state string) string {
	q := url.Values{}
	q.Set("clientId", p.client.ClientID)
	q.Set("redirectUri", p.client.CallbackURL)
	q.Set("state", state)
	return p.authURL + "?" + q.Encode()
}

type chzzkEnvelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Content T      `json:"content"`
}

type chzzkToken struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    string `json:"expiresIn"`
}

type chzzkMe struct {
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}

type chzzkChannels struct {
	Data []struct {
		ChannelID       string `json:"channelId"`
		ChannelName     string `json:"channelName"`
		ChannelImageURL string `json:"channelImageUrl"`
		FollowerCount   int64  `json:"followerCount"`
	} `json:"data"`
}

// Exchange echoes the callback state in the token request as CHZZK requires.
func (p *ChzzkProvider) Exchange(ctx context.Context, code, state string) (*Profile, error) {
	payload, err := json.Marshal(map[string]string{
		"grantType":    "authorization_code",
		"clientId":     p.client.ClientID,
		"clientSecret": p.client.ClientSecret,
		"code":         code,
		"state":        state,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: chzzk: encoding token request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/auth/v1/token", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("auth: chzzk: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var token chzzkEnvelope[chzzkToken]
	if err := fetchJSON(p.http, req, &token); err != nil {
		return nil, fmt.Errorf("auth: chzzk: exchanging code: %w", err)
	}
	if token.Content.AccessToken == "" {
		return nil, fmt.Errorf("auth: chzzk: exchanging code: %s", token.Message)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/open/v1/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("auth: chzzk: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Content.AccessToken)

	var me chzzkEnvelope[chzzkMe]
	if err := fetchJSON(p.http, req, &me); err != nil {
		return nil, fmt.Errorf("auth: chzzk: %w", err)
	}
	if me.Content.ChannelID == "" {
		return nil, fmt.Errorf("auth: chzzk: %w", ErrNoProfile)
	}

	// Channel details use client credentials rather than the user token.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet,
		p.apiBase+"/open/v1/channels?channelIds="+url.QueryEscape(me.Content.ChannelID), nil)
	if err != nil {
		return nil, fmt.Errorf("auth: chzzk: %w", err)
	}
	req.Header.Set("Client-Id", p.client.ClientID)
	req.Header.Set("Client-Secret", p.client.ClientSecret)

	var channels chzzkEnvelope[chzzkChannels]
	if err := fetchJSON(p.http, req, &channels); err != nil {
		return nil, fmt.Errorf("auth: chzzk: %w", err)
	}

	profile := &Profile{
		Provider:          model.ProviderChzzk,
		ProviderAccountID: me.Content.ChannelID,
		AccessToken:       token.Content.AccessToken,
		RefreshToken:      token.Content.RefreshToken,
		ProfileName:       me.Content.ChannelName,
	}
	if len(channels.Content.Data) > 0 {
		ch := channels.Content.Data[0]
		profile.ProfileImage = ch.ChannelImageURL
		profile.SubscriberCount = ch.FollowerCount
	}
	return profile, nil
}
