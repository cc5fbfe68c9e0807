package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/model"
)

const soopAPIBase = "https://openapi.sooplive.co.kr"

// SoopProvider covers SOOP (formerly AfreecaTV). Its token endpoint is a
// plain form POST, so oauth2.Config handles the exchange; station info is a
// form POST carrying the access token.
type SoopProvider struct {
	config  *oauth2.Config
	apiBase string
}

func NewSoopProvider(c config.OAuthClient) *SoopProvider {
	return &SoopProvider{
		config: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   soopAPIBase + "/auth/code",
				TokenURL:  soopAPIBase + "/auth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: soopAPIBase,
	}
}

func (p *SoopProvider) Name() model.Provider { return model.ProviderSoop }

func (p *SoopProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type soopStation struct {
	Result int `json:"result"`
	Data   struct {
		UserID       string `json:"user_id"`
		UserNick     string `json:"user_nick"`
		ProfileImage string `json:"profile_image"`
		FanCount     int64  `json:"fan_cnt"`
	} `json:"data"`
}

func (p *SoopProvider) Exchange(ctx context.Context, code, state string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: soop: exchanging code: %w", err)
	}

	form := url.Values{}
	form.Set("access_token", token.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/user/stationinfo",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("auth: soop: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var station soopStation
	if err := fetchJSON(p.config.Client(ctx, token), req, &station); err != nil {
		return nil, fmt.Errorf("auth: soop: %w", err)
	}
	if station.Result != 1 || station.Data.UserID == "" {
		return nil, fmt.Errorf("auth: soop: %w", ErrNoProfile)
	}

	return &Profile{
		Provider:          model.ProviderSoop,
		ProviderAccountID: station.Data.UserID,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		ProfileName:       station.Data.UserNick,
		ProfileImage:      station.Data.ProfileImage,
		SubscriberCount:   station.Data.FanCount,
	}, nil
}
