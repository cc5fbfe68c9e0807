package model

import "time"

// Comment belongs to a post. ParentID allows exactly one level of replies.
type Comment struct {
	ID        string        `json:"id"`
	PostID    string        `json:"postId"`
	AuthorID  string        `json:"authorId"`
	ParentID  *string       `json:"parentId"`
	Content   string        `json:"content"`
	Status    ContentStatus `json:"status"`
	LikeCount int64         `json:"likeCount"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	DeletedAt *time.Time    `json:"-"`

	Images   []Image   `json:"images,omitempty"`
	Hashtags []string  `json:"hashtags,omitempty"`
	Author   *Author   `json:"author,omitempty"`
	Liked    bool      `json:"liked"`
	Replies  []Comment `json:"replies,omitempty"`

	// AuthorBlocked is set on list reads when the viewer blocked the author.
	AuthorBlocked bool `json:"-"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// IsDeleted reports whether the comment was soft-deleted.
func (c *Comment) IsDeleted() bool {
	return c.Status == ContentDeleted
}
