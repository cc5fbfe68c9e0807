package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =========================================================================
// fakeUserRepo
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users    map[string]*model.User
	accounts map[string]*model.Account // keyed by provider + ":" + provider account id
	nextID   int

	updates int // UpdateAccount calls
	creates int // CreateAccount + CreateUserWithAccount calls

	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*model.User),
		accounts: make(map[string]*model.Account),
	}
}

func accountKey(p model.Provider, id string) string { return string(p) + ":" + id }

func (f *fakeUserRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindAccount(ctx context.Context, p model.Provider, id string) (*model.Account, *model.User, error) {
	if f.findErr != nil {
		return nil, nil, f.findErr
	}
	a, ok := f.accounts[accountKey(p, id)]
	if !ok {
		return nil, nil, apperror.NotFound("account", id)
	}
	acc := *a
	owner := *f.users[a.UserID]
	return &acc, &owner, nil
}

func (f *fakeUserRepo) CreateUserWithAccount(ctx context.Context, a *model.Account) (*model.User, error) {
	u := &model.User{ID: f.id("user"), Role: model.RoleUser, Status: model.UserStatusActive, CreatedAt: time.Now()}
	f.users[u.ID] = u
	a.UserID = u.ID
	if err := f.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	copied := *u
	copied.Accounts = []model.Account{*a}
	return &copied, nil
}

func (f *fakeUserRepo) CreateAccount(ctx context.Context, a *model.Account) error {
	key := accountKey(a.Provider, a.ProviderAccountID)
	if _, ok := f.accounts[key]; ok {
		return apperror.Conflict("providerAccountId", "account is already linked to another user")
	}
	f.creates++
	a.ID = f.id("account")
	stored := *a
	f.accounts[key] = &stored
	return nil
}

func (f *fakeUserRepo) UpdateAccount(ctx context.Context, a *model.Account) error {
	key := accountKey(a.Provider, a.ProviderAccountID)
	if _, ok := f.accounts[key]; !ok {
		return apperror.NotFound("account", a.ID)
	}
	f.updates++
	stored := *a
	f.accounts[key] = &stored
	return nil
}

func (f *fakeUserRepo) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	var out []model.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) MaxSubscriberCount(ctx context.Context, userID string) (int64, error) {
	accounts, _ := f.ListAccounts(ctx, userID)
	return model.MaxSubscriberCount(accounts), nil
}

func (f *fakeUserRepo) UpdateNickname(ctx context.Context, userID, nickname string) error {
	for _, u := range f.users {
		if u.ID != userID && u.Nickname != nil && *u.Nickname == nickname {
			return apperror.Conflict("nickname", "nickname is already taken")
		}
	}
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	u.Nickname = &nickname
	return nil
}

func (f *fakeUserRepo) WithdrawUser(ctx context.Context, userID string) error {
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	ts := time.Now()
	u.Status = model.UserStatusWithdrawn
	u.DeletedAt = &ts
	return nil
}

// =========================================================================
// fakeChannelRepo
// =========================================================================

type fakeChannelRepo struct {
	channels []model.Channel
	grants   map[string]model.ChannelAccess // keyed by user + ":" + channel
}

func newFakeChannelRepo(channels ...model.Channel) *fakeChannelRepo {
	return &fakeChannelRepo{channels: channels, grants: make(map[string]model.ChannelAccess)}
}

func (f *fakeChannelRepo) ListActiveChannels(ctx context.Context) ([]model.Channel, error) {
	var out []model.Channel
	for _, c := range f.channels {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChannelRepo) ListAccessibleChannels(ctx context.Context, n int64) ([]model.Channel, error) {
	var out []model.Channel
	for _, c := range f.channels {
		if c.IsActive && c.Admits(n) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChannelRepo) GetChannel(ctx context.Context, idOrSlug string) (*model.Channel, error) {
	for _, c := range f.channels {
		if c.ID == idOrSlug || c.Slug == idOrSlug {
			copied := c
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("channel", idOrSlug)
}

func (f *fakeChannelRepo) UpsertChannel(ctx context.Context, c *model.Channel) error {
	for i := range f.channels {
		if f.channels[i].Slug == c.Slug {
			c.ID = f.channels[i].ID
			f.channels[i] = *c
			return nil
		}
	}
	c.ID = "ch-" + c.Slug
	f.channels = append(f.channels, *c)
	return nil
}

func (f *fakeChannelRepo) UpsertChannelAccess(ctx context.Context, userID string, ids []string, expiresAt time.Time) ([]model.ChannelAccess, error) {
	out := make([]model.ChannelAccess, 0, len(ids))
	for _, id := range ids {
		g := model.ChannelAccess{UserID: userID, ChannelID: id, ExpiresAt: expiresAt}
		f.grants[userID+":"+id] = g
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeChannelRepo) GetChannelAccess(ctx context.Context, userID, channelID string) (*model.ChannelAccess, error) {
	g, ok := f.grants[userID+":"+channelID]
	if !ok {
		return nil, apperror.NotFound("channel access", channelID)
	}
	return &g, nil
}

func (f *fakeChannelRepo) ListValidChannelAccess(ctx context.Context, userID string, at time.Time) ([]model.ChannelAccess, error) {
	var out []model.ChannelAccess
	for _, g := range f.grants {
		if g.UserID == userID && g.ValidAt(at) {
			out = append(out, g)
		}
	}
	return out, nil
}
