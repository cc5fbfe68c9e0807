package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
)

func testChannels() []model.Channel {
	out := make([]model.Channel, len(DefaultChannels))
	for i, c := range DefaultChannels {
		c.ID = "ch-" + c.Slug
		c.IsActive = true
		out[i] = c
	}
	return out
}

func slugs(channels []model.Channel) []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = c.Slug
	}
	return out
}

func TestHasAccess_Bands(t *testing.T) {
	svc := NewChannelService(newFakeChannelRepo(), newFakeUserRepo(), testLogger())
	lounge100 := &model.Channel{MinSubscribers: 100, MaxSubscribers: bound(999)}
	open := &model.Channel{}

	tests := []struct {
		name    string
		channel *model.Channel
		count   int64
		want    bool
	}{
		{"below band", lounge100, 99, false},
		{"lower bound inclusive", lounge100, 100, true},
		{"upper bound inclusive", lounge100, 999, true},
		{"above band", lounge100, 1000, false},
		{"open channel with zero", open, 0, true},
		{"open channel with millions", open, 5_000_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.HasAccess(tt.channel, tt.count))
		})
	}
}

func TestGetAccessibleChannels_StrictBanding(t *testing.T) {
	svc := NewChannelService(newFakeChannelRepo(testChannels()...), newFakeUserRepo(), testLogger())

	got, err := svc.GetAccessibleChannels(context.Background(), 150000)
	require.NoError(t, err)
	assert.Equal(t, []string{"free", "creator-tips", "collab", "lounge-100k"}, slugs(got))

	none, err := svc.GetAccessibleChannels(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"free", "creator-tips", "collab"}, slugs(none))
}

func TestRefreshAccess_GrantsExpireAfterTTL(t *testing.T) {
	repo := newFakeChannelRepo(testChannels()...)
	svc := NewChannelService(repo, newFakeUserRepo(), testLogger())
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	grants, err := svc.RefreshAccessBySubscriberCount(ctx, "u1", 1500)
	require.NoError(t, err)
	require.Len(t, grants, 4)
	for _, g := range grants {
		assert.Equal(t, fixed.Add(AccessTTL), g.ExpiresAt)
		require.NotNil(t, g.Channel)
	}

	ok, err := svc.CheckAccess(ctx, "u1", "ch-lounge-1k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckAccess(ctx, "u1", "ch-lounge-10k")
	require.NoError(t, err)
	assert.False(t, ok, "no grant means no access")

	svc.now = func() time.Time { return fixed.Add(AccessTTL + time.Second) }
	ok, err = svc.CheckAccess(ctx, "u1", "ch-lounge-1k")
	require.NoError(t, err)
	assert.False(t, ok, "expired grants are not valid")

	mine, err := svc.ListMyAccesses(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestAuthorizeWrite(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewChannelService(newFakeChannelRepo(testChannels()...), users, testLogger())
	ctx := context.Background()

	user, err := users.CreateUserWithAccount(ctx, &model.Account{Provider: model.ProviderYouTube, ProviderAccountID: "a", SubscriberCount: 120})
	require.NoError(t, err)

	c, err := svc.AuthorizeWrite(ctx, user.ID, "lounge-100")
	require.NoError(t, err)
	assert.Equal(t, "ch-lounge-100", c.ID)

	_, err = svc.AuthorizeWrite(ctx, user.ID, "lounge-1k")
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "error = %v", err)

	// The live count decides even when a stale grant says otherwise.
	_, err = svc.RefreshAccessBySubscriberCount(ctx, user.ID, 5000)
	require.NoError(t, err)
	_, err = svc.AuthorizeWrite(ctx, user.ID, "lounge-1k")
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "error = %v", err)

	_, err = svc.AuthorizeWrite(ctx, user.ID, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "error = %v", err)

	require.NoError(t, users.WithdrawUser(ctx, user.ID))
	_, err = svc.AuthorizeWrite(ctx, user.ID, "free")
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "error = %v", err)
}

func TestGetChannel_Inactive(t *testing.T) {
	hidden := model.Channel{ID: "ch-old", Slug: "old", IsActive: false}
	svc := NewChannelService(newFakeChannelRepo(hidden), newFakeUserRepo(), testLogger())

	_, err := svc.GetChannel(context.Background(), "old")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSeedChannels_Idempotent(t *testing.T) {
	repo := newFakeChannelRepo()
	svc := NewChannelService(repo, newFakeUserRepo(), testLogger())

	require.NoError(t, svc.SeedChannels(context.Background()))
	require.NoError(t, svc.SeedChannels(context.Background()))
	assert.Len(t, repo.channels, len(DefaultChannels))
}

func TestDefaultChannels_BandsDoNotOverlap(t *testing.T) {
	for _, n := range []int64{0, 99, 100, 999, 1000, 9999, 10000, 99999, 100000, 999999, 1000000, 50_000_000} {
		lounges := 0
		for _, c := range DefaultChannels {
			if !c.IsOpen() && c.Admits(n) {
				lounges++
			}
		}
		want := 1
		if n < 100 {
			want = 0
		}
		assert.Equal(t, want, lounges, "count %d", n)
	}
}
