package model

import "time"

type InquiryStatus string

const (
	InquiryOpen     InquiryStatus = "OPEN"
	InquiryAnswered InquiryStatus = "ANSWERED"
)

// Inquiry is a support ticket opened by a user and answered by an admin.
type Inquiry struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	Category   string        `json:"category"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	Status     InquiryStatus `json:"status"`
	Answer     *string       `json:"answer"`
	AnsweredAt *time.Time    `json:"answeredAt"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type FAQ struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}
