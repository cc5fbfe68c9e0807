// Package repository declares the storage contracts the service layer depends on.
// internal/repository/sqlite is the production implementation.
package repository

import (
	"context"
	"time"

	"github.com/sakif/creator-lounge/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// PostFilter narrows ListPosts. Empty fields are ignored. ViewerID drives the
// liked flag and hides authors the viewer has blocked.
type PostFilter struct {
	ChannelID string
	AuthorID  string
	Hashtag   string
	ViewerID  string
	ListOptions
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// FindAccount looks up an account by its unique provider identity together
	// with its owning user (withdrawn users included).
	FindAccount(ctx context.Context, provider model.Provider, providerAccountID string) (*model.Account, *model.User, error)
	// CreateUserWithAccount inserts a fresh user and its first account in one transaction.
	CreateUserWithAccount(ctx context.Context, account *model.Account) (*model.User, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	// UpdateAccount refreshes tokens, profile and subscriber count in place.
	UpdateAccount(ctx context.Context, account *model.Account) error
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
	MaxSubscriberCount(ctx context.Context, userID string) (int64, error)
	UpdateNickname(ctx context.Context, userID, nickname string) error
	WithdrawUser(ctx context.Context, userID string) error
}

type ChannelRepository interface {
	ListActiveChannels(ctx context.Context) ([]model.Channel, error)
	ListAccessibleChannels(ctx context.Context, subscriberCount int64) ([]model.Channel, error)
	// GetChannel accepts either the channel id or its slug.
	GetChannel(ctx context.Context, idOrSlug string) (*model.Channel, error)
	UpsertChannel(ctx context.Context, channel *model.Channel) error
	UpsertChannelAccess(ctx context.Context, userID string, channelIDs []string, expiresAt time.Time) ([]model.ChannelAccess, error)
	GetChannelAccess(ctx context.Context, userID, channelID string) (*model.ChannelAccess, error)
	ListValidChannelAccess(ctx context.Context, userID string, now time.Time) ([]model.ChannelAccess, error)
}

type PostRepository interface {
	// CreatePost inserts the post, its ordered images and hashtag links in one transaction.
	CreatePost(ctx context.Context, post *model.Post, imageURLs, hashtags []string) error
	// GetPost returns an active post with images, hashtags, author and the viewer's liked flag.
	GetPost(ctx context.Context, id, viewerID string) (*model.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]model.Post, error)
	// UpdatePost rewrites title/content and replaces images and hashtags.
	UpdatePost(ctx context.Context, post *model.Post, imageURLs, hashtags []string) error
	SoftDeletePost(ctx context.Context, id string) error
	IncrementPostViews(ctx context.Context, id string) error
	TogglePostLike(ctx context.Context, postID, userID string) (*model.LikeResult, error)
}

type CommentRepository interface {
	// CreateComment inserts the comment and bumps the post's comment count in one transaction.
	CreateComment(ctx context.Context, comment *model.Comment, imageURLs, hashtags []string) error
	// GetComment returns the comment even when soft-deleted.
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListComments returns every comment of a post oldest first, deleted ones and
	// ones by authors the viewer blocked included and flagged.
	ListComments(ctx context.Context, postID, viewerID string) ([]model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment, hashtags []string) error
	SoftDeleteComment(ctx context.Context, id string) error
	ToggleCommentLike(ctx context.Context, commentID, userID string) (*model.LikeResult, error)
}

type HashtagRepository interface {
	PopularHashtags(ctx context.Context, limit int) ([]model.Hashtag, error)
	SearchHashtags(ctx context.Context, prefix string, limit int) ([]model.Hashtag, error)
}

type ReportRepository interface {
	CreateReport(ctx context.Context, report *model.Report) error
	ListReportsByReporter(ctx context.Context, reporterID string) ([]model.Report, error)
}

type BlockRepository interface {
	CreateBlock(ctx context.Context, blockerID, blockedID string) (*model.UserBlock, error)
	DeleteBlock(ctx context.Context, blockerID, blockedID string) error
	ListBlocks(ctx context.Context, blockerID string) ([]model.UserBlock, error)
}

type SupportRepository interface {
	CreateInquiry(ctx context.Context, inquiry *model.Inquiry) error
	GetInquiry(ctx context.Context, id string) (*model.Inquiry, error)
	ListInquiriesByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Inquiry, error)
	AnswerInquiry(ctx context.Context, id, answer string, answeredAt time.Time) error
	ListFAQs(ctx context.Context, category string) ([]model.FAQ, error)
	UpsertFAQ(ctx context.Context, faq *model.FAQ) error
}
