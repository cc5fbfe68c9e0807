package model

import "time"

// Channel is a community tier or topic. Lounges carry a subscriber band;
// open channels have MinSubscribers = 0 and no upper bound.
type Channel struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	MinSubscribers int64     `json:"minSubscribers"`
	MaxSubscribers *int64    `json:"maxSubscribers"` // nil = unbounded
	IsActive       bool      `json:"isActive"`
	SortOrder      int       `json:"sortOrder"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Admits is the band predicate: min <= count and (max is unbounded or count <= max).
func (c *Channel) Admits(subscriberCount int64) bool {
	if subscriberCount < c.MinSubscribers {
		return false
	}
	return c.MaxSubscribers == nil || subscriberCount <= *c.MaxSubscribers
}

// IsOpen reports whether every user can access the channel.
func (c *Channel) IsOpen() bool {
	return c.MinSubscribers == 0 && c.MaxSubscribers == nil
}

// ChannelAccess is a cached grant. It is valid only while ExpiresAt is in the future.
type ChannelAccess struct {
	UserID    string    `json:"userId"`
	ChannelID string    `json:"channelId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Channel *Channel `json:"channel,omitempty"`
}

// ValidAt reports whether the grant is unexpired at t.
func (a *ChannelAccess) ValidAt(t time.Time) bool {
	return a.ExpiresAt.After(t)
}
