package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/format"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

const (
	NicknameMinLength = 2
	NicknameMaxLength = 20
)

type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Me is the signed-in user's own view.
type Me struct {
	*model.User
	SubscriberCount int64  `json:"subscriberCount"`
	SubscriberLabel string `json:"subscriberLabel"`
}

// PublicProfile is what other users see.
type PublicProfile struct {
	ID              string           `json:"id"`
	Nickname        *string          `json:"nickname"`
	SubscriberCount int64            `json:"subscriberCount"`
	SubscriberLabel string           `json:"subscriberLabel"`
	Providers       []model.Provider `json:"providers"`
}

// GetMe returns the active user with accounts. A withdrawn user is
// unauthorized even while their token is unexpired.
func (s *UserService) GetMe(ctx context.Context, userID string) (*Me, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.users.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing accounts: %w", err)
	}
	user.Accounts = accounts

	best := model.MaxSubscriberCount(accounts)
	return &Me{
		User:            user,
		SubscriberCount: best,
		SubscriberLabel: format.SubscriberCount(best),
	}, nil
}

func (s *UserService) UpdateNickname(ctx context.Context, userID, nickname string) (*model.User, error) {
	nickname = strings.TrimSpace(nickname)
	if n := utf8.RuneCountInString(nickname); n < NicknameMinLength || n > NicknameMaxLength {
		return nil, apperror.ValidationFailed("nickname",
			fmt.Sprintf("nickname must be %d-%d characters", NicknameMinLength, NicknameMaxLength))
	}
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateNickname(ctx, userID, nickname); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, userID)
}

// Withdraw soft-deletes the user. Their content stays.
func (s *UserService) Withdraw(ctx context.Context, userID string) error {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.WithdrawUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user withdrew", slog.String("userID", userID))
	return nil
}

func (s *UserService) GetMaxSubscriberCount(ctx context.Context, userID string) (int64, error) {
	return s.users.MaxSubscriberCount(ctx, userID)
}

func (s *UserService) GetPublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, apperror.NotFound("user", userID)
	}
	accounts, err := s.users.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing accounts: %w", err)
	}

	providers := make([]model.Provider, 0, len(accounts))
	for _, a := range accounts {
		providers = append(providers, a.Provider)
	}
	best := model.MaxSubscriberCount(accounts)
	return &PublicProfile{
		ID:              user.ID,
		Nickname:        user.Nickname,
		SubscriberCount: best,
		SubscriberLabel: format.SubscriberCount(best),
		Providers:       providers,
	}, nil
}

func (s *UserService) activeUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, apperror.Unauthorized("user has withdrawn")
	}
	return user, nil
}
