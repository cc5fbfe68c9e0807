package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/format"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

// AccessTTL is how long a cached grant stays valid after a refresh.
const AccessTTL = 24 * time.Hour

func bound(n int64) *int64 { return &n }

// DefaultChannels is the catalogue seeded on startup. Lounge bands do not
// overlap: a creator belongs to exactly one of them.
var DefaultChannels = []model.Channel{
	{Name: "자유게시판", Slug: "free", Description: "Open to everyone", SortOrder: 0},
	{Name: "크리에이터 팁", Slug: "creator-tips", Description: "Tips and know-how", SortOrder: 1},
	{Name: "콜라보", Slug: "collab", Description: "Find collaboration partners", SortOrder: 2},
	{Name: "100+ 라운지", Slug: "lounge-100", MinSubscribers: 100, MaxSubscribers: bound(999), SortOrder: 10},
	{Name: "1천+ 라운지", Slug: "lounge-1k", MinSubscribers: 1000, MaxSubscribers: bound(9999), SortOrder: 11},
	{Name: "1만+ 라운지", Slug: "lounge-10k", MinSubscribers: 10000, MaxSubscribers: bound(99999), SortOrder: 12},
	{Name: "10만+ 라운지", Slug: "lounge-100k", MinSubscribers: 100000, MaxSubscribers: bound(999999), SortOrder: 13},
	{Name: "100만+ 라운지", Slug: "lounge-1m", MinSubscribers: 1000000, SortOrder: 14},
}

// ChannelService evaluates channel access. Authorization always uses the
// live subscriber count; the channel_access rows are only a cache for the
// "my accesses" listing.
type ChannelService struct {
	channels repository.ChannelRepository
	users    repository.UserRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewChannelService(channels repository.ChannelRepository, users repository.UserRepository, logger *slog.Logger) *ChannelService {
	return &ChannelService{
		channels: channels,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// HasAccess is the band predicate: min <= n and (no max or n <= max).
func (s *ChannelService) HasAccess(channel *model.Channel, subscriberCount int64) bool {
	return channel.Admits(subscriberCount)
}

func (s *ChannelService) ListChannels(ctx context.Context) ([]model.Channel, error) {
	channels, err := s.channels.ListActiveChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return channels, nil
}

// GetChannel accepts an id or a slug. Inactive channels are not found.
func (s *ChannelService) GetChannel(ctx context.Context, idOrSlug string) (*model.Channel, error) {
	channel, err := s.channels.GetChannel(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !channel.IsActive {
		return nil, apperror.NotFound("channel", idOrSlug)
	}
	return channel, nil
}

func (s *ChannelService) GetAccessibleChannels(ctx context.Context, subscriberCount int64) ([]model.Channel, error) {
	channels, err := s.channels.ListAccessibleChannels(ctx, subscriberCount)
	if err != nil {
		return nil, fmt.Errorf("listing accessible channels: %w", err)
	}
	return channels, nil
}

// GetAccessibleChannelsForUser evaluates the user's best platform count live.
func (s *ChannelService) GetAccessibleChannelsForUser(ctx context.Context, userID string) ([]model.Channel, error) {
	n, err := s.users.MaxSubscriberCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading subscriber count of %s: %w", userID, err)
	}
	return s.GetAccessibleChannels(ctx, n)
}

// RefreshAccessBySubscriberCount recomputes the accessible channels and
// writes one grant per channel expiring AccessTTL from now. Grants for
// channels the user no longer qualifies for are left to expire.
func (s *ChannelService) RefreshAccessBySubscriberCount(ctx context.Context, userID string, subscriberCount int64) ([]model.ChannelAccess, error) {
	channels, err := s.GetAccessibleChannels(ctx, subscriberCount)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(channels))
	for i, c := range channels {
		ids[i] = c.ID
	}
	grants, err := s.channels.UpsertChannelAccess(ctx, userID, ids, s.now().Add(AccessTTL))
	if err != nil {
		return nil, fmt.Errorf("refreshing access of %s: %w", userID, err)
	}

	byID := make(map[string]model.Channel, len(channels))
	for _, c := range channels {
		byID[c.ID] = c
	}
	for i := range grants {
		c := byID[grants[i].ChannelID]
		grants[i].Channel = &c
	}

	s.logger.Info("channel access refreshed",
		slog.String("userID", userID),
		slog.Int64("subscriberCount", subscriberCount),
		slog.Int("channels", len(grants)),
	)
	return grants, nil
}

// RefreshAccessForUser is the refresh endpoint: it reads the user's current
// best subscriber count first.
func (s *ChannelService) RefreshAccessForUser(ctx context.Context, userID string) ([]model.ChannelAccess, error) {
	n, err := s.users.MaxSubscriberCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading subscriber count of %s: %w", userID, err)
	}
	return s.RefreshAccessBySubscriberCount(ctx, userID, n)
}

// CheckAccess answers from the cache only: true when a grant exists and
// has not expired. It never authorizes a write.
func (s *ChannelService) CheckAccess(ctx context.Context, userID, channelID string) (bool, error) {
	grant, err := s.channels.GetChannelAccess(ctx, userID, channelID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking access: %w", err)
	}
	return grant.ValidAt(s.now()), nil
}

func (s *ChannelService) ListMyAccesses(ctx context.Context, userID string) ([]model.ChannelAccess, error) {
	grants, err := s.channels.ListValidChannelAccess(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("listing access of %s: %w", userID, err)
	}
	return grants, nil
}

// AuthorizeWrite is the authoritative gate for posting and commenting. It
// recomputes eligibility from the user's current accounts and ignores the
// cached grants, so a dropped subscriber count takes effect immediately.
func (s *ChannelService) AuthorizeWrite(ctx context.Context, userID, channelIDOrSlug string) (*model.Channel, error) {
	channel, err := s.GetChannel(ctx, channelIDOrSlug)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, apperror.Forbidden("withdrawn users cannot write")
	}

	n, err := s.users.MaxSubscriberCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading subscriber count of %s: %w", userID, err)
	}
	if !s.HasAccess(channel, n) {
		s.logger.Warn("channel write denied",
			slog.String("userID", userID),
			slog.String("channel", channel.Slug),
			slog.Int64("subscriberCount", n),
		)
		return nil, apperror.Forbidden(fmt.Sprintf("%s is not open to creators with %s subscribers",
			channel.Name, format.SubscriberCount(n)))
	}
	return channel, nil
}

// SeedChannels upserts DefaultChannels by slug. Safe on every start.
func (s *ChannelService) SeedChannels(ctx context.Context) error {
	for _, c := range DefaultChannels {
		c := c
		c.IsActive = true
		if err := s.channels.UpsertChannel(ctx, &c); err != nil {
			return fmt.Errorf("seeding channel %s: %w", c.Slug, err)
		}
	}
	s.logger.Info("channels seeded", slog.Int("count", len(DefaultChannels)))
	return nil
}
