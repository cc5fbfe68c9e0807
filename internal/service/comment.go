package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

const CommentMaxLength = 2000

type CreateCommentInput struct {
	Content   string   `json:"content"`
	ParentID  *string  `json:"parentId"`
	ImageURLs []string `json:"imageUrls"`
	Hashtags  []string `json:"hashtags"`
}

type UpdateCommentInput struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	channels *ChannelService
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	channels *ChannelService,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		channels: channels,
		logger:   logger,
	}
}

func (s *CommentService) Create(ctx context.Context, userID, postID string, in CreateCommentInput) (*model.Comment, error) {
	content, err := requireText("content", in.Content, CommentMaxLength)
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

	post, err := s.posts.GetPost(ctx, postID, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.channels.AuthorizeWrite(ctx, userID, post.ChannelID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Content:  content,
	}
	if in.ParentID != nil && *in.ParentID != "" {
		if err := s.checkParent(ctx, post.ID, *in.ParentID); err != nil {
			return nil, err
		}
		comment.ParentID = in.ParentID
	}

	if err := s.comments.CreateComment(ctx, comment, images, tags); err != nil {
		return nil, fmt.Errorf("service/comment: creating comment: %w", err)
	}
	s.logger.Info("comment created",
		slog.String("commentID", comment.ID),
		slog.String("postID", post.ID),
		slog.String("authorID", userID),
	)
	return s.comments.GetComment(ctx, comment.ID)
}

// checkParent allows one level of replies on live comments of the same post.
func (s *CommentService) checkParent(ctx context.Context, postID, parentID string) error {
	parent, err := s.comments.GetComment(ctx, parentID)
	if err != nil {
		return err
	}
	switch {
	case parent.PostID != postID:
		return apperror.ValidationFailed("parentId", "parent comment belongs to another post")
	case parent.IsDeleted():
		return apperror.ValidationFailed("parentId", "cannot reply to a deleted comment")
	case parent.IsReply():
		return apperror.ValidationFailed("parentId", "replies cannot be nested")
	}
	return nil
}

// ListByPost returns top-level comments with their replies nested. A deleted
// top-level comment, or one by an author the viewer blocked, is kept as a
// blank placeholder while it has visible replies.
func (s *CommentService) ListByPost(ctx context.Context, postID, viewerID string) ([]model.Comment, error) {
	if _, err := s.posts.GetPost(ctx, postID, ""); err != nil {
		return nil, err
	}
	flat, err := s.comments.ListComments(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing comments of %s: %w", postID, err)
	}
	return buildCommentTree(flat), nil
}

func buildCommentTree(flat []model.Comment) []model.Comment {
	replies := make(map[string][]model.Comment)
	for _, c := range flat {
		if c.IsReply() && !c.IsDeleted() && !c.AuthorBlocked {
			labelAuthor(c.Author)
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	tree := make([]model.Comment, 0, len(flat))
	for _, c := range flat {
		if c.IsReply() {
			continue
		}
		c.Replies = replies[c.ID]
		if c.IsDeleted() || c.AuthorBlocked {
			if len(c.Replies) == 0 {
				continue
			}
			c.Content = ""
			c.Author = nil
			c.Images = nil
			c.Hashtags = nil
			c.Liked = false
		}
		labelAuthor(c.Author)
		tree = append(tree, c)
	}
	return tree
}

func (s *CommentService) Update(ctx context.Context, userID, commentID string, in UpdateCommentInput) (*model.Comment, error) {
	content, err := requireText("content", in.Content, CommentMaxLength)
	if err != nil {
		return nil, err
	}
	comment, err := s.ownComment(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}

	tags := comment.Hashtags
	if in.Hashtags != nil {
		if tags, err = NormalizeHashtags(in.Hashtags); err != nil {
			return nil, err
		}
	}
	comment.Content = content
	if err := s.comments.UpdateComment(ctx, comment, tags); err != nil {
		return nil, fmt.Errorf("service/comment: updating comment %s: %w", commentID, err)
	}
	return s.comments.GetComment(ctx, commentID)
}

func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	if _, err := s.ownComment(ctx, userID, commentID); err != nil {
		return err
	}
	if err := s.comments.SoftDeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.String("commentID", commentID), slog.String("userID", userID))
	return nil
}

func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID string) (*model.LikeResult, error) {
	return s.comments.ToggleCommentLike(ctx, commentID, userID)
}

func (s *CommentService) ownComment(ctx context.Context, userID, commentID string) (*model.Comment, error) {
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted() {
		return nil, apperror.NotFound("comment", commentID)
	}
	if comment.AuthorID != userID {
		return nil, apperror.Forbidden("only the author can change this comment")
	}
	return comment, nil
}
