package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/auth"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

// AuthService turns a provider profile into a local user and a session token.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                               ↘ ChannelService (access refresh)
//	                               ↘ TokenService (JWT)
type AuthService struct {
	users    repository.UserRepository
	channels *ChannelService
	tokens   *auth.TokenService
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	channels *ChannelService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		channels: channels,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginResult carries what the OAuth callback needs for its redirect.
type LoginResult struct {
	User            *model.User
	Account         *model.Account
	Token           string
	SubscriberCount int64
	ChannelName     string
}

// ResolveOrCreate maps a profile onto a user. A known identity gets its
// tokens and subscriber count refreshed; an unknown one becomes a new user
// with this account as the first. When the owning user has withdrawn it
// returns (nil, nil): the account is not resurrected and no new user is made.
func (s *AuthService) ResolveOrCreate(ctx context.Context, profile *auth.Profile) (*model.User, error) {
	if profile == nil {
		return nil, fmt.Errorf("service/auth: profile must not be nil")
	}

	account, owner, err := s.users.FindAccount(ctx, profile.Provider, profile.ProviderAccountID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		user, err := s.users.CreateUserWithAccount(ctx, profile.Account())
		if err != nil {
			return nil, fmt.Errorf("service/auth: creating user for %s: %w", profile.Provider, err)
		}
		s.logger.Info("user created",
			slog.String("userID", user.ID),
			slog.String("provider", string(profile.Provider)),
		)
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("service/auth: finding account: %w", err)
	}

	if owner.IsDeleted() {
		s.logger.Warn("login for withdrawn user refused",
			slog.String("userID", owner.ID),
			slog.String("provider", string(profile.Provider)),
		)
		return nil, nil
	}

	refreshAccount(account, profile)
	if err := s.users.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("service/auth: refreshing account %s: %w", account.ID, err)
	}
	owner.Accounts = []model.Account{*account}
	return owner, nil
}

// LinkAccount attaches profile to userID. An identity already owned by a
// different user is a conflict and nothing is changed; one owned by the same
// user is refreshed in place.
func (s *AuthService) LinkAccount(ctx context.Context, userID string, profile *auth.Profile) (*model.Account, error) {
	if profile == nil {
		return nil, fmt.Errorf("service/auth: profile must not be nil")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, apperror.Forbidden("withdrawn users cannot link accounts")
	}

	account, _, err := s.users.FindAccount(ctx, profile.Provider, profile.ProviderAccountID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		account = profile.Account()
		account.UserID = userID
		if err := s.users.CreateAccount(ctx, account); err != nil {
			return nil, err
		}
		s.logger.Info("account linked",
			slog.String("userID", userID),
			slog.String("provider", string(profile.Provider)),
		)
		return account, nil
	case err != nil:
		return nil, fmt.Errorf("service/auth: finding account: %w", err)
	}

	if account.UserID != userID {
		return nil, apperror.Conflict("providerAccountId", "this account is already linked to another user")
	}

	refreshAccount(account, profile)
	if err := s.users.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("service/auth: refreshing account %s: %w", account.ID, err)
	}
	return account, nil
}

// CompleteLogin runs the callback: resolve (or link, when linkUserID is set),
// refresh cached channel access from the best platform count, issue a token.
func (s *AuthService) CompleteLogin(ctx context.Context, profile *auth.Profile, linkUserID string) (*LoginResult, error) {
	var (
		user    *model.User
		account *model.Account
		err     error
	)

	if linkUserID != "" {
		account, err = s.LinkAccount(ctx, linkUserID, profile)
		if err != nil {
			return nil, err
		}
		user, err = s.users.GetUserByID(ctx, linkUserID)
		if err != nil {
			return nil, err
		}
	} else {
		user, err = s.ResolveOrCreate(ctx, profile)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperror.Forbidden("this account belongs to a withdrawn user")
		}
		if len(user.Accounts) > 0 {
			account = &user.Accounts[0]
		}
	}

	best, err := s.users.MaxSubscriberCount(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: reading subscriber count: %w", err)
	}
	if _, err := s.channels.RefreshAccessBySubscriberCount(ctx, user.ID, best); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &LoginResult{
		User:            user,
		Account:         account,
		Token:           token,
		SubscriberCount: best,
		ChannelName:     profile.ProfileName,
	}, nil
}

// ValidateToken returns the user id a token was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

func refreshAccount(a *model.Account, p *auth.Profile) {
	a.AccessToken = p.AccessToken
	a.RefreshToken = p.RefreshToken
	a.ProfileName = p.ProfileName
	a.ProfileImage = p.ProfileImage
	a.SubscriberCount = p.SubscriberCount
}
