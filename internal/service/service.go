// Package service holds the business rules of the lounge: identity
// resolution, channel access evaluation, content with its counters,
// moderation guards and support.
//
// Services take repository interfaces and a *slog.Logger by constructor and
// return apperror values; they know nothing about HTTP.
package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/format"
	"github.com/sakif/creator-lounge/internal/model"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// clampPage applies the list defaults shared by every paginated endpoint.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// requireText trims s and checks its length in runes.
func requireText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if utf8.RuneCountInString(s) > max {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s must be %d characters or less", field, max))
	}
	return s, nil
}

// labelAuthor fills the display label derived from the subscriber count.
func labelAuthor(a *model.Author) {
	if a != nil {
		a.SubscriberLabel = format.SubscriberCount(a.SubscriberCount)
	}
}
