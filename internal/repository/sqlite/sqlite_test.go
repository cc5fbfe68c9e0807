package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

// newTestDB opens a fresh in-memory database per test. It lives on the single
// pooled connection and disappears when Close runs in cleanup.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, provider model.Provider, providerAccountID string, subscribers int64) *model.User {
	t.Helper()
	user, err := db.CreateUserWithAccount(context.Background(), &model.Account{
		Provider:          provider,
		ProviderAccountID: providerAccountID,
		AccessToken:       "access-" + providerAccountID,
		ProfileName:       "creator " + providerAccountID,
		SubscriberCount:   subscribers,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestChannel(t *testing.T, db *DB, slug string, min int64, max *int64) *model.Channel {
	t.Helper()
	c := &model.Channel{
		Name:           slug,
		Slug:           slug,
		MinSubscribers: min,
		MaxSubscribers: max,
		IsActive:       true,
	}
	if err := db.UpsertChannel(context.Background(), c); err != nil {
		t.Fatalf("failed to create test channel: %v", err)
	}
	return c
}

func createTestPost(t *testing.T, db *DB, channelID, authorID string, hashtags ...string) *model.Post {
	t.Helper()
	p := &model.Post{ChannelID: channelID, AuthorID: authorID, Title: "title", Content: "content"}
	if err := db.CreatePost(context.Background(), p, nil, hashtags); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

func int64Ptr(v int64) *int64 { return &v }

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 20, 0},
		{"explicit", 5, 10, 5, 10},
		{"capped", 500, 0, 100, 0},
		{"negative offset", 10, -3, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := page(repository.ListOptions{Limit: tt.limit, Offset: tt.offset})
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("page() = (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
