package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

const (
	MaxHashtags      = 10
	MaxHashtagLength = 30
)

// NormalizeHashtag trims a tag, strips leading '#' and lowercases it.
func NormalizeHashtag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeHashtags normalizes tags, drops empty ones and duplicates, and
// enforces the per-content limits.
func NormalizeHashtags(tags []string) ([]string, error) {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		name := NormalizeHashtag(t)
		if name == "" || seen[name] {
			continue
		}
		if utf8.RuneCountInString(name) > MaxHashtagLength {
			return nil, apperror.ValidationFailed("hashtags",
				fmt.Sprintf("hashtag %q is longer than %d characters", name, MaxHashtagLength))
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) > MaxHashtags {
		return nil, apperror.ValidationFailed("hashtags", fmt.Sprintf("at most %d hashtags are allowed", MaxHashtags))
	}
	return out, nil
}

type HashtagService struct {
	hashtags repository.HashtagRepository
	logger   *slog.Logger
}

func NewHashtagService(hashtags repository.HashtagRepository, logger *slog.Logger) *HashtagService {
	return &HashtagService{hashtags: hashtags, logger: logger}
}

func (s *HashtagService) Popular(ctx context.Context, limit int) ([]model.Hashtag, error) {
	limit, _ = clampPage(limit, 0)
	tags, err := s.hashtags.PopularHashtags(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service/hashtag: popular: %w", err)
	}
	return tags, nil
}

// Search matches normalized names by prefix. An empty prefix returns nothing.
func (s *HashtagService) Search(ctx context.Context, prefix string, limit int) ([]model.Hashtag, error) {
	prefix = NormalizeHashtag(prefix)
	if prefix == "" {
		return []model.Hashtag{}, nil
	}
	limit, _ = clampPage(limit, 0)
	tags, err := s.hashtags.SearchHashtags(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("service/hashtag: search %q: %w", prefix, err)
	}
	return tags, nil
}
