// Package model defines the data structures used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Provider is an external platform whose OAuth identity can be linked to a User.
type Provider string

const (
	ProviderYouTube   Provider = "YOUTUBE"
	ProviderTikTok    Provider = "TIKTOK"
	ProviderTwitch    Provider = "TWITCH"
	ProviderSoop      Provider = "SOOP"
	ProviderInstagram Provider = "INSTAGRAM"
	ProviderChzzk     Provider = "CHZZK"
)

// Providers lists every supported provider in display order.
var Providers = []Provider{
	ProviderYouTube,
	ProviderTikTok,
	ProviderTwitch,
	ProviderSoop,
	ProviderInstagram,
	ProviderChzzk,
}

// ParseProvider accepts the lowercase URL form ("youtube") or the stored form ("YOUTUBE").
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("model: unknown provider %q", s)
}

// Slug is the lowercase form used in routes, e.g. /auth/youtube.
func (p Provider) Slug() string {
	return strings.ToLower(string(p))
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusWithdrawn UserStatus = "WITHDRAWN"
)

// User is the identity anchor. It owns zero or more linked Accounts.
//
// Nickname stays nil until the user picks one after their first login.
// Withdrawal is a soft delete: Status becomes WITHDRAWN and DeletedAt is stamped.
type User struct {
	ID        string     `json:"id"`
	Nickname  *string    `json:"nickname"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"`

	Accounts []Account `json:"accounts,omitempty"`
}

// IsDeleted reports whether the user has withdrawn.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil || u.Status == UserStatusWithdrawn
}

// IsAdmin reports whether the user may answer inquiries.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Account is a linked external identity. (Provider, ProviderAccountID) is
// globally unique and an Account never moves between users.
//
// Tokens are opaque and refreshed on every login; they never leave the server.
type Account struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Provider          Provider  `json:"provider"`
	ProviderAccountID string    `json:"providerAccountId"`
	AccessToken       string    `json:"-"`
	RefreshToken      string    `json:"-"`
	ProfileName       string    `json:"profileName"`
	ProfileImage      string    `json:"profileImage"`
	SubscriberCount   int64     `json:"subscriberCount"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MaxSubscriberCount returns the best subscriber count across accounts.
// A creator qualifies by their single strongest platform, never by a sum.
func MaxSubscriberCount(accounts []Account) int64 {
	var best int64
	for _, a := range accounts {
		if a.SubscriberCount > best {
			best = a.SubscriberCount
		}
	}
	return best
}
