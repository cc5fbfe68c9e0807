package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository/sqlite"
)

// testStack wires the content services over an in-memory database.
type testStack struct {
	db       *sqlite.DB
	channels *ChannelService
	users    *UserService
	posts    *PostService
	comments *CommentService
	hashtags *HashtagService
	reports  *ReportService
	blocks   *BlockService
	support  *SupportService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := testLogger()
	channels := NewChannelService(db, db, logger)
	require.NoError(t, channels.SeedChannels(context.Background()))

	return &testStack{
		db:       db,
		channels: channels,
		users:    NewUserService(db, logger),
		posts:    NewPostService(db, channels, logger),
		comments: NewCommentService(db, db, channels, logger),
		hashtags: NewHashtagService(db, logger),
		reports:  NewReportService(db, db, db, db, logger),
		blocks:   NewBlockService(db, db, logger),
		support:  NewSupportService(db, db, logger),
	}
}

func (s *testStack) user(t *testing.T, id string, subs int64) *model.User {
	t.Helper()
	u, err := s.db.CreateUserWithAccount(context.Background(), &model.Account{
		Provider:          model.ProviderYouTube,
		ProviderAccountID: id,
		SubscriberCount:   subs,
	})
	require.NoError(t, err)
	return u
}

func (s *testStack) post(t *testing.T, authorID, channel string, tags ...string) *model.Post {
	t.Helper()
	p, err := s.posts.Create(context.Background(), authorID, CreatePostInput{
		ChannelID: channel,
		Title:     "title",
		Content:   "content",
		Hashtags:  tags,
	})
	require.NoError(t, err)
	return p
}

// =========================================================================
// Posts
// =========================================================================

func TestPostCreate_AccessAndValidation(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	small := s.user(t, "small", 150)

	p, err := s.posts.Create(ctx, small.ID, CreatePostInput{
		ChannelID: "lounge-100",
		Title:     "  hello  ",
		Content:   "first",
		ImageURLs: []string{"https://cdn/a.png", "https://cdn/b.png"},
		Hashtags:  []string{"#Go", "go", " Tips "},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Title)
	assert.Equal(t, []string{"go", "tips"}, p.Hashtags)
	require.Len(t, p.Images, 2)
	assert.Equal(t, "https://cdn/a.png", p.Images[0].URL)

	_, err = s.posts.Create(ctx, small.ID, CreatePostInput{ChannelID: "lounge-1k", Title: "t", Content: "c"})
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "error = %v", err)

	tests := []struct {
		name  string
		input CreatePostInput
		field string
	}{
		{"empty title", CreatePostInput{ChannelID: "free", Title: "  ", Content: "c"}, "title"},
		{"long title", CreatePostInput{ChannelID: "free", Title: strings.Repeat("가", 101), Content: "c"}, "title"},
		{"empty content", CreatePostInput{ChannelID: "free", Title: "t"}, "content"},
		{"too many hashtags", CreatePostInput{ChannelID: "free", Title: "t", Content: "c",
			Hashtags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}}, "hashtags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.posts.Create(ctx, small.ID, tt.input)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr), "error = %v", err)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestPostGet_CountsViewsAndLabelsAuthor(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	author := s.user(t, "a", 12345)
	p := s.post(t, author.ID, "free")

	got, err := s.posts.Get(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)
	require.NotNil(t, got.Author)
	assert.Equal(t, "1만", got.Author.SubscriberLabel)

	require.NoError(t, s.posts.Delete(ctx, author.ID, p.ID))
	_, err = s.posts.Get(ctx, p.ID, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "error = %v", err)
}

func TestPostUpdateDelete_AuthorOnly(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	author := s.user(t, "a", 0)
	stranger := s.user(t, "b", 0)
	p := s.post(t, author.ID, "free", "old")

	title := "new title"
	_, err := s.posts.Update(ctx, stranger.ID, p.ID, UpdatePostInput{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "error = %v", err)

	updated, err := s.posts.Update(ctx, author.ID, p.ID, UpdatePostInput{Title: &title, Hashtags: []string{"New"}})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "content", updated.Content, "nil content keeps the old one")
	assert.Equal(t, []string{"new"}, updated.Hashtags)

	assert.True(t, errors.Is(s.posts.Delete(ctx, stranger.ID, p.ID), apperror.ErrForbidden))
	require.NoError(t, s.posts.Delete(ctx, author.ID, p.ID))
}

func TestPostToggleLike(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	author := s.user(t, "a", 0)
	p := s.post(t, author.ID, "free")

	on, err := s.posts.ToggleLike(ctx, author.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LikeResult{Liked: true, LikeCount: 1}, *on)

	off, err := s.posts.ToggleLike(ctx, author.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LikeResult{Liked: false, LikeCount: 0}, *off)
}

func TestPostList_FiltersAndBlocks(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	viewer := s.user(t, "v", 0)
	troll := s.user(t, "t", 0)
	s.post(t, viewer.ID, "free", "golang")
	s.post(t, troll.ID, "free")
	s.post(t, viewer.ID, "collab")

	all, err := s.posts.List(ctx, ListPostsInput{Channel: "free"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tagged, err := s.posts.List(ctx, ListPostsInput{Hashtag: "#GoLang"})
	require.NoError(t, err)
	assert.Len(t, tagged, 1)

	_, err = s.blocks.Block(ctx, viewer.ID, troll.ID)
	require.NoError(t, err)
	visible, err := s.posts.List(ctx, ListPostsInput{Channel: "free", ViewerID: viewer.ID})
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	_, err = s.posts.List(ctx, ListPostsInput{Channel: "nope"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// =========================================================================
// Comments
// =========================================================================

func TestCommentCreate_ReplyRules(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	author := s.user(t, "a", 0)
	p := s.post(t, author.ID, "free")
	other := s.post(t, author.ID, "free")

	top, err := s.comments.Create(ctx, author.ID, p.ID, CreateCommentInput{Content: "top"})
	require.NoError(t, err)
	reply, err := s.comments.Create(ctx, author.ID, p.ID, CreateCommentInput{Content: "reply", ParentID: &top.ID})
	require.NoError(t, err)

	tests := []struct {
		name   string
		postID string
		parent string
	}{
		{"nested reply", p.ID, reply.ID},
		{"parent on another post", other.ID, top.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := tt.parent
			_, err := s.comments.Create(ctx, author.ID, tt.postID, CreateCommentInput{Content: "x", ParentID: &parent})
			assert.True(t, errors.Is(err, apperror.ErrValidation), "error = %v", err)
		})
	}

	require.NoError(t, s.comments.Delete(ctx, author.ID, reply.ID))
	require.NoError(t, s.comments.Delete(ctx, author.ID, top.ID))
	_, err = s.comments.Create(ctx, author.ID, p.ID, CreateCommentInput{Content: "x", ParentID: &top.ID})
	assert.True(t, errors.Is(err, apperror.ErrValidation), "replying to a deleted comment: %v", err)
}

func TestCommentCreate_RequiresChannelAccess(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	big := s.user(t, "big", 2_000_000)
	small := s.user(t, "small", 10)
	p := s.post(t, big.ID, "lounge-1m")

	_, err := s.comments.Create(ctx, small.ID, p.ID, CreateCommentInput{Content: "hi"})
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "error = %v", err)
}

func TestCommentListByPost_Tree(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	author := s.user(t, "a", 0)
	p := s.post(t, author.ID, "free")

	parent, err := s.comments.Create(ctx, author.ID, p.ID, CreateCommentInput{Content: "parent", Hashtags: []string{"x"}})
	require.NoError(t, err)
	_, err = s.comments.Create(ctx, author.ID, p.ID, CreateCommentInput{Content: "child", ParentID: &parent.ID})
	require.NoError(t, err)
	lonely, err := s.comments.Create(ctx, author.ID, p.ID, CreateCommentInput{Content: "lonely"})
	require.NoError(t, err)

	require.NoError(t, s.comments.Delete(ctx, author.ID, parent.ID))
	require.NoError(t, s.comments.Delete(ctx, author.ID, lonely.ID))

	tree, err := s.comments.ListByPost(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, tree, 1, "deleted comment without replies is dropped")

	placeholder := tree[0]
	assert.Equal(t, parent.ID, placeholder.ID)
	assert.Empty(t, placeholder.Content)
	assert.Nil(t, placeholder.Author)
	assert.Empty(t, placeholder.Hashtags)
	require.Len(t, placeholder.Replies, 1)
	assert.Equal(t, "child", placeholder.Replies[0].Content)
}

func TestCommentListByPost_BlockedAuthorKeepsThread(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	viewer := s.user(t, "v", 0)
	troll := s.user(t, "t", 0)
	friend := s.user(t, "f", 0)
	p := s.post(t, friend.ID, "free")

	trollRoot, err := s.comments.Create(ctx, troll.ID, p.ID, CreateCommentInput{Content: "bait"})
	require.NoError(t, err)
	_, err = s.comments.Create(ctx, friend.ID, p.ID, CreateCommentInput{Content: "answer", ParentID: &trollRoot.ID})
	require.NoError(t, err)
	_, err = s.comments.Create(ctx, troll.ID, p.ID, CreateCommentInput{Content: "bait again"})
	require.NoError(t, err)
	friendRoot, err := s.comments.Create(ctx, friend.ID, p.ID, CreateCommentInput{Content: "hello"})
	require.NoError(t, err)
	_, err = s.comments.Create(ctx, troll.ID, p.ID, CreateCommentInput{Content: "reply bait", ParentID: &friendRoot.ID})
	require.NoError(t, err)

	_, err = s.blocks.Block(ctx, viewer.ID, troll.ID)
	require.NoError(t, err)

	tree, err := s.comments.ListByPost(ctx, p.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2, "blocked comment without replies is dropped")

	placeholder := tree[0]
	assert.Equal(t, trollRoot.ID, placeholder.ID)
	assert.Empty(t, placeholder.Content)
	assert.Nil(t, placeholder.Author)
	require.Len(t, placeholder.Replies, 1)
	assert.Equal(t, "answer", placeholder.Replies[0].Content)

	assert.Equal(t, friendRoot.ID, tree[1].ID)
	assert.Empty(t, tree[1].Replies, "replies by blocked authors are hidden")

	anonymous, err := s.comments.ListByPost(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, anonymous, 3)
	assert.Equal(t, "bait", anonymous[0].Content)
}

func TestCommentUpdateDelete_AuthorOnly(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	author := s.user(t, "a", 0)
	stranger := s.user(t, "b", 0)
	p := s.post(t, author.ID, "free")

	c, err := s.comments.Create(ctx, author.ID, p.ID, CreateCommentInput{Content: "v1"})
	require.NoError(t, err)

	_, err = s.comments.Update(ctx, stranger.ID, c.ID, UpdateCommentInput{Content: "v2"})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	updated, err := s.comments.Update(ctx, author.ID, c.ID, UpdateCommentInput{Content: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Content)

	assert.True(t, errors.Is(s.comments.Delete(ctx, stranger.ID, c.ID), apperror.ErrForbidden))
	require.NoError(t, s.comments.Delete(ctx, author.ID, c.ID))
	assert.True(t, errors.Is(s.comments.Delete(ctx, author.ID, c.ID), apperror.ErrNotFound))

	got, err := s.posts.Get(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CommentCount)
}

// =========================================================================
// Hashtags
// =========================================================================

func TestNormalizeHashtags(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{"trims and lowercases", []string{" #Go ", "RUST"}, []string{"go", "rust"}, false},
		{"drops empties and duplicates", []string{"#", "", "go", "#go", "GO"}, []string{"go"}, false},
		{"nil", nil, []string{}, false},
		{"too long", []string{strings.Repeat("a", 31)}, nil, true},
		{"thirty runes ok", []string{strings.Repeat("한", 30)}, []string{strings.Repeat("한", 30)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHashtags(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperror.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashtagPopularAndSearch(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	author := s.user(t, "a", 0)
	s.post(t, author.ID, "free", "golang", "go")
	s.post(t, author.ID, "free", "golang")

	popular, err := s.hashtags.Popular(ctx, 0)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "golang", popular[0].Name)
	assert.Equal(t, int64(2), popular[0].UsageCount)

	found, err := s.hashtags.Search(ctx, "#GOL", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "golang", found[0].Name)

	empty, err := s.hashtags.Search(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// =========================================================================
// Reports and blocks
// =========================================================================

func TestReportCreate(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	reporter := s.user(t, "r", 0)
	author := s.user(t, "a", 0)
	p := s.post(t, author.ID, "free")
	mine := s.post(t, reporter.ID, "free")

	report, err := s.reports.Create(ctx, reporter.ID, CreateReportInput{TargetType: "post", TargetID: p.ID, Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, model.ReportPending, report.Status)

	_, err = s.reports.Create(ctx, reporter.ID, CreateReportInput{TargetType: "POST", TargetID: p.ID, Reason: "ABUSE"})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "duplicate report: %v", err)

	tests := []struct {
		name  string
		input CreateReportInput
		want  error
	}{
		{"self", CreateReportInput{TargetType: "USER", TargetID: reporter.ID, Reason: "SPAM"}, apperror.ErrValidation},
		{"own post", CreateReportInput{TargetType: "POST", TargetID: mine.ID, Reason: "SPAM"}, apperror.ErrValidation},
		{"other without description", CreateReportInput{TargetType: "USER", TargetID: author.ID, Reason: "OTHER"}, apperror.ErrValidation},
		{"unknown reason", CreateReportInput{TargetType: "USER", TargetID: author.ID, Reason: "BORING"}, apperror.ErrValidation},
		{"missing post", CreateReportInput{TargetType: "POST", TargetID: "nope", Reason: "SPAM"}, apperror.ErrNotFound},
		{"missing comment", CreateReportInput{TargetType: "COMMENT", TargetID: "nope", Reason: "SPAM"}, apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.reports.Create(ctx, reporter.ID, tt.input)
			assert.True(t, errors.Is(err, tt.want), "error = %v, want %v", err, tt.want)
		})
	}

	_, err = s.reports.Create(ctx, reporter.ID, CreateReportInput{TargetType: "USER", TargetID: author.ID, Reason: "OTHER", Description: "impersonation"})
	require.NoError(t, err)

	list, err := s.reports.ListMine(ctx, reporter.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBlockService(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	me := s.user(t, "me", 0)
	other := s.user(t, "o", 2500)

	_, err := s.blocks.Block(ctx, me.ID, me.ID)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = s.blocks.Block(ctx, me.ID, "ghost")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = s.blocks.Block(ctx, me.ID, other.ID)
	require.NoError(t, err)
	_, err = s.blocks.Block(ctx, me.ID, other.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	list, err := s.blocks.ListBlocked(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2.5천", list[0].Blocked.SubscriberLabel)

	require.NoError(t, s.blocks.Unblock(ctx, me.ID, other.ID))
	assert.True(t, errors.Is(s.blocks.Unblock(ctx, me.ID, other.ID), apperror.ErrNotFound))
}

// =========================================================================
// Users
// =========================================================================

func TestUserService(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	me := s.user(t, "me", 3000)
	other := s.user(t, "o", 0)

	_, err := s.users.UpdateNickname(ctx, me.ID, "x")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	u, err := s.users.UpdateNickname(ctx, me.ID, " 창작자 ")
	require.NoError(t, err)
	require.NotNil(t, u.Nickname)
	assert.Equal(t, "창작자", *u.Nickname)

	_, err = s.users.UpdateNickname(ctx, other.ID, "창작자")
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	got, err := s.users.GetMe(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.SubscriberCount)
	assert.Equal(t, "3.0천", got.SubscriberLabel)

	profile, err := s.users.GetPublicProfile(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Provider{model.ProviderYouTube}, profile.Providers)

	require.NoError(t, s.users.Withdraw(ctx, me.ID))
	_, err = s.users.GetMe(ctx, me.ID)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	_, err = s.users.GetPublicProfile(ctx, me.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// =========================================================================
// Support
// =========================================================================

func TestSupportService(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	owner := s.user(t, "owner", 0)
	stranger := s.user(t, "stranger", 0)

	_, err := s.support.CreateInquiry(ctx, owner.ID, CreateInquiryInput{Category: "billing", Title: "t", Content: "c"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	q, err := s.support.CreateInquiry(ctx, owner.ID, CreateInquiryInput{Category: "Account", Title: "help", Content: "please"})
	require.NoError(t, err)
	assert.Equal(t, "account", q.Category)

	_, err = s.support.GetInquiry(ctx, stranger.ID, q.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = s.support.AnswerInquiry(ctx, stranger.ID, q.ID, "no")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	mine, err := s.support.ListMyInquiries(ctx, owner.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, s.support.SeedFAQs(ctx))
	require.NoError(t, s.support.SeedFAQs(ctx))
	faqs, err := s.support.ListFAQs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, faqs, len(DefaultFAQs))

	channelFAQs, err := s.support.ListFAQs(ctx, "CHANNEL")
	require.NoError(t, err)
	assert.Len(t, channelFAQs, 2)
}
