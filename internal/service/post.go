package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

const (
	PostTitleMaxLength   = 100
	PostContentMaxLength = 10000
	MaxImages            = 10
)

type CreatePostInput struct {
	ChannelID string   `json:"channelId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"imageUrls"`
	Hashtags  []string `json:"hashtags"`
}

// UpdatePostInput leaves a field unchanged when it is nil.
type UpdatePostInput struct {
	Title     *string  `json:"title"`
	Content   *string  `json:"content"`
	ImageURLs []string `json:"imageUrls"`
	Hashtags  []string `json:"hashtags"`
}

type ListPostsInput struct {
	Channel  string // id or slug
	AuthorID string
	Hashtag  string
	ViewerID string
	Limit    int
	Offset   int
}

type PostService struct {
	posts    repository.PostRepository
	channels *ChannelService
	logger   *slog.Logger
}

func NewPostService(posts repository.PostRepository, channels *ChannelService, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, channels: channels, logger: logger}
}

func (s *PostService) Create(ctx context.Context, userID string, in CreatePostInput) (*model.Post, error) {
	title, err := requireText("title", in.Title, PostTitleMaxLength)
	if err != nil {
		return nil, err
	}
	content, err := requireText("content", in.Content, PostContentMaxLength)
	if err != nil {
		return nil, err
	}
	images, err := cleanImageURLs(in.ImageURLs)
	if err != nil {
		return nil, err
	}
	tags, err := NormalizeHashtags(in.Hashtags)
	if err != nil {
		return nil, err
	}

	channel, err := s.channels.AuthorizeWrite(ctx, userID, in.ChannelID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ChannelID: channel.ID,
		AuthorID:  userID,
		Title:     title,
		Content:   content,
	}
	if err := s.posts.CreatePost(ctx, post, images, tags); err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("channel", channel.Slug),
		slog.String("authorID", userID),
	)
	return s.posts.GetPost(ctx, post.ID, userID)
}

// Get counts a view and returns the post for viewerID ("" when anonymous).
func (s *PostService) Get(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	if err := s.posts.IncrementPostViews(ctx, postID); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	labelAuthor(post.Author)
	return post, nil
}

func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]model.Post, error) {
	limit, offset := clampPage(in.Limit, in.Offset)
	filter := repository.PostFilter{
		AuthorID:    in.AuthorID,
		ViewerID:    in.ViewerID,
		ListOptions: repository.ListOptions{Limit: limit, Offset: offset},
	}
	if in.Channel != "" {
		channel, err := s.channels.GetChannel(ctx, in.Channel)
		if err != nil {
			return nil, err
		}
		filter.ChannelID = channel.ID
	}
	if in.Hashtag != "" {
		filter.Hashtag = NormalizeHashtag(in.Hashtag)
	}

	posts, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	for i := range posts {
		labelAuthor(posts[i].Author)
	}
	return posts, nil
}

func (s *PostService) Update(ctx context.Context, userID, postID string, in UpdatePostInput) (*model.Post, error) {
	post, err := s.ownPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if post.Title, err = requireText("title", *in.Title, PostTitleMaxLength); err != nil {
			return nil, err
		}
	}
	if in.Content != nil {
		if post.Content, err = requireText("content", *in.Content, PostContentMaxLength); err != nil {
			return nil, err
		}
	}

	images := imageURLs(post.Images)
	if in.ImageURLs != nil {
		if images, err = cleanImageURLs(in.ImageURLs); err != nil {
			return nil, err
		}
	}
	tags := post.Hashtags
	if in.Hashtags != nil {
		if tags, err = NormalizeHashtags(in.Hashtags); err != nil {
			return nil, err
		}
	}

	if err := s.posts.UpdatePost(ctx, post, images, tags); err != nil {
		return nil, fmt.Errorf("service/post: updating post %s: %w", postID, err)
	}
	return s.posts.GetPost(ctx, postID, userID)
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	if _, err := s.ownPost(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.posts.SoftDeletePost(ctx, postID); err != nil {
		return err
	}
	s.logger.Info("post deleted", slog.String("postID", postID), slog.String("userID", userID))
	return nil
}

func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*model.LikeResult, error) {
	return s.posts.TogglePostLike(ctx, postID, userID)
}

func (s *PostService) ownPost(ctx context.Context, userID, postID string) (*model.Post, error) {
	post, err := s.posts.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperror.Forbidden("only the author can change this post")
	}
	return post, nil
}

func cleanImageURLs(urls []string) ([]string, error) {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	if len(out) > MaxImages {
		return nil, apperror.ValidationFailed("imageUrls", fmt.Sprintf("at most %d images are allowed", MaxImages))
	}
	return out, nil
}

func imageURLs(images []model.Image) []string {
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return urls
}
