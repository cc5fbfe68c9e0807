package model

import (
	"fmt"
	"strings"
	"time"
)

type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "POST"
	ReportTargetComment ReportTargetType = "COMMENT"
	ReportTargetUser    ReportTargetType = "USER"
)

func ParseReportTargetType(s string) (ReportTargetType, error) {
	switch t := ReportTargetType(strings.ToUpper(s)); t {
	case ReportTargetPost, ReportTargetComment, ReportTargetUser:
		return t, nil
	}
	return "", fmt.Errorf("model: unknown report target %q", s)
}

type ReportReason string

const (
	ReportReasonSpam    ReportReason = "SPAM"
	ReportReasonAbuse   ReportReason = "ABUSE"
	ReportReasonAdult   ReportReason = "ADULT"
	ReportReasonIllegal ReportReason = "ILLEGAL"
	ReportReasonOther   ReportReason = "OTHER"
)

func ParseReportReason(s string) (ReportReason, error) {
	switch r := ReportReason(strings.ToUpper(s)); r {
	case ReportReasonSpam, ReportReasonAbuse, ReportReasonAdult, ReportReasonIllegal, ReportReasonOther:
		return r, nil
	}
	return "", fmt.Errorf("model: unknown report reason %q", s)
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

// Report is unique per (reporter, target type, target id).
type Report struct {
	ID          string           `json:"id"`
	ReporterID  string           `json:"reporterId"`
	TargetType  ReportTargetType `json:"targetType"`
	TargetID    string           `json:"targetId"`
	Reason      ReportReason     `json:"reason"`
	Description string           `json:"description"`
	Status      ReportStatus     `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// UserBlock is unique per (blocker, blocked).
type UserBlock struct {
	BlockerID string    `json:"blockerId"`
	BlockedID string    `json:"blockedId"`
	CreatedAt time.Time `json:"createdAt"`

	Blocked *Author `json:"blocked,omitempty"`
}
