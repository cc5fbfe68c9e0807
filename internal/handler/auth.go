package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/auth"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/service"
)

const (
	stateCookie = "oauth_state"
	linkCookie  = "oauth_link"
	flowMaxAge  = 600 // seconds
)

// AuthHandler runs the OAuth login and account-link flows for every
// registered provider.
//
//	GET /auth/{provider}               → redirect to the platform
//	GET /auth/{provider}?linkToken=jwt → same, but the callback links to that user
//	GET /auth/{provider}/callback      → redirect to the frontend with a token
//
// The callback never answers with JSON: both success and failure end in a
// redirect to FRONTEND_URL so the browser lands back in the app.
type AuthHandler struct {
	providers    *auth.Registry
	auth         *service.AuthService
	frontendURL  string
	secureCookie bool
	tokenTTL     time.Duration
	logger       *slog.Logger
}

func NewAuthHandler(
	providers *auth.Registry,
	authService *service.AuthService,
	frontendURL string,
	secureCookie bool,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		providers:    providers,
		auth:         authService,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		secureCookie: secureCookie,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// HandleProviders lists the providers that can be used to sign in.
//
// HTTP: GET /auth/providers
func (h *AuthHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	names := h.providers.Names()
	slugs := make([]string, len(names))
	for i, n := range names {
		slugs[i] = n.Slug()
	}
	writeJSON(w, http.StatusOK, map[string][]string{"providers": slugs})
}

// HandleLogin stores a fresh state (and the link token, if any) in short-lived
// cookies and sends the browser to the platform.
//
// HTTP: GET /auth/{provider}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(r)
	if !ok {
		h.redirectError(w, r, "unsupported_provider")
		return
	}

	if linkToken := r.URL.Query().Get("linkToken"); linkToken != "" {
		if _, err := h.auth.ValidateToken(linkToken); err != nil {
			h.redirectError(w, r, "invalid_link_token")
			return
		}
		h.setFlowCookie(w, linkCookie, linkToken, flowMaxAge)
	} else {
		h.setFlowCookie(w, linkCookie, "", -1)
	}

	state := xid.New().String()
	h.setFlowCookie(w, stateCookie, state, flowMaxAge)
	http.Redirect(w, r, provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback verifies state, exchanges the code and finishes the login
// or link.
//
// HTTP: GET /auth/{provider}/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(r)
	if !ok {
		h.redirectError(w, r, "unsupported_provider")
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || r.URL.Query().Get("state") != state.Value {
		h.logger.Warn("auth callback: state mismatch", slog.String("provider", string(provider.Name())))
		h.redirectError(w, r, "invalid_state")
		return
	}
	h.setFlowCookie(w, stateCookie, "", -1)

	var linkUserID string
	if link, err := r.Cookie(linkCookie); err == nil && link.Value != "" {
		h.setFlowCookie(w, linkCookie, "", -1)
		if linkUserID, err = h.auth.ValidateToken(link.Value); err != nil {
			h.redirectError(w, r, "invalid_link_token")
			return
		}
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied",
			slog.String("provider", string(provider.Name())),
			slog.String("error", errParam),
		)
		h.redirectError(w, r, "access_denied")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, "missing_code")
		return
	}

	profile, err := provider.Exchange(r.Context(), code, state.Value)
	if err != nil {
		h.logger.Error("auth callback: exchange failed",
			slog.String("provider", string(provider.Name())),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, auth.ErrNoProfile) {
			h.redirectError(w, r, "no_channel")
			return
		}
		h.redirectError(w, r, "oauth_failed")
		return
	}

	result, err := h.auth.CompleteLogin(r.Context(), profile, linkUserID)
	if err != nil {
		h.logger.Warn("auth callback: login failed",
			slog.String("provider", string(provider.Name())),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, apperror.ErrConflict):
			h.redirectError(w, r, "account_already_linked")
		case errors.Is(err, apperror.ErrForbidden):
			h.redirectError(w, r, "withdrawn_user")
		default:
			h.redirectError(w, r, "login_failed")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	q := url.Values{}
	q.Set("token", result.Token)
	q.Set("provider", provider.Name().Slug())
	q.Set("channelName", result.ChannelName)
	q.Set("subscriberCount", strconv.FormatInt(result.SubscriberCount, 10))
	if linkUserID != "" {
		q.Set("linked", "true")
	}
	http.Redirect(w, r, h.frontendURL+"/auth/callback?"+q.Encode(), http.StatusSeeOther)
}

// HandleLogout clears the token cookie. Bearer tokens stay valid until expiry.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) provider(r *http.Request) (auth.Provider, bool) {
	name, err := model.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		return nil, false
	}
	return h.providers.Get(name)
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.frontendURL+"/auth/error?error="+url.QueryEscape(code), http.StatusSeeOther)
}

// setFlowCookie scopes a cookie to /auth; maxAge -1 deletes it.
func (h *AuthHandler) setFlowCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
