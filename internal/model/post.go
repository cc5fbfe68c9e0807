package model

import "time"

// ContentStatus is shared by posts and comments. Deleted content keeps its row.
type ContentStatus string

const (
	ContentActive  ContentStatus = "ACTIVE"
	ContentDeleted ContentStatus = "DELETED"
)

// Post is a channel post. LikeCount, CommentCount and ViewCount are
// denormalized counters kept in step with their rows inside one transaction.
type Post struct {
	ID           string        `json:"id"`
	ChannelID    string        `json:"channelId"`
	AuthorID     string        `json:"authorId"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Status       ContentStatus `json:"status"`
	LikeCount    int64         `json:"likeCount"`
	CommentCount int64         `json:"commentCount"`
	ViewCount    int64         `json:"viewCount"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	DeletedAt    *time.Time    `json:"-"`

	Images   []Image  `json:"images,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Author   *Author  `json:"author,omitempty"`
	Liked    bool     `json:"liked"`
}

// Image is an uploaded picture attached to a post or comment in display order.
type Image struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Author is the public face of a content owner.
type Author struct {
	ID              string  `json:"id"`
	Nickname        *string `json:"nickname"`
	SubscriberCount int64   `json:"subscriberCount"`
	SubscriberLabel string  `json:"subscriberLabel"`
}

// Hashtag is deduplicated by its normalized name.
type Hashtag struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UsageCount int64     `json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LikeResult is returned by like toggles.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
