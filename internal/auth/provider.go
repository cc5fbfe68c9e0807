package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/model"
)

// ErrNoProfile is returned when the platform authorized the user but has no
// channel or profile to attach (e.g. a Google account without a YouTube channel).
var ErrNoProfile = errors.New("auth: provider returned no profile")

// Profile is the normalized shape every provider produces after the code
// exchange. It is the only input of the identity resolver.
type Profile struct {
	Provider          model.Provider
	ProviderAccountID string
	AccessToken       string
	RefreshToken      string
	ProfileName       string
	ProfileImage      string
	SubscriberCount   int64
}

// Account converts the profile into an unsaved account row.
func (p *Profile) Account() *model.Account {
	return &model.Account{
		Provider:          p.Provider,
		ProviderAccountID: p.ProviderAccountID,
		AccessToken:       p.AccessToken,
		RefreshToken:      p.RefreshToken,
		ProfileName:       p.ProfileName,
		ProfileImage:      p.ProfileImage,
		SubscriberCount:   p.SubscriberCount,
	}
}

// Provider drives one platform's authorization code flow.
type Provider interface {
	Name() model.Provider
	// AuthURL is where the browser is sent; state comes back on the callback.
	AuthURL(state string) string
	// Exchange trades the callback code for a normalized profile. state is the
	// already verified value from the callback; most platforms ignore it.
	Exchange(ctx context.Context, code, state string) (*Profile, error)
}

// Registry is the static provider lookup used by the OAuth handlers.
type Registry struct {
	providers map[model.Provider]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[model.Provider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// NewRegistryFromConfig registers every provider that has credentials.
func NewRegistryFromConfig(cfg *config.Config) *Registry {
	var providers []Provider
	if cfg.YouTube.Enabled() {
		providers = append(providers, NewYouTubeProvider(cfg.YouTube))
	}
	if cfg.TikTok.Enabled() {
		providers = append(providers, NewTikTokProvider(cfg.TikTok))
	}
	if cfg.Twitch.Enabled() {
		providers = append(providers, NewTwitchProvider(cfg.Twitch))
	}
	if cfg.Soop.Enabled() {
		providers = append(providers, NewSoopProvider(cfg.Soop))
	}
	if cfg.Instagram.Enabled() {
		providers = append(providers, NewInstagramProvider(cfg.Instagram))
	}
	if cfg.Chzzk.Enabled() {
		providers = append(providers, NewChzzkProvider(cfg.Chzzk))
	}
	return NewRegistry(providers...)
}

func (r *Registry) Get(name model.Provider) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists the registered providers in display order.
func (r *Registry) Names() []model.Provider {
	names := make([]model.Provider, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	order := make(map[model.Provider]int, len(model.Providers))
	for i, p := range model.Providers {
		order[p] = i
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })
	return names
}

// fetchJSON performs req and decodes a 200 response into out.
func fetchJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", req.URL.Path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return fetchJSON(client, req, out)
}
