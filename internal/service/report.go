package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

const ReportDescriptionMaxLength = 1000

type CreateReportInput struct {
	TargetType  string `json:"targetType"`
	TargetID    string `json:"targetId"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type ReportService struct {
	reports  repository.ReportRepository
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewReportService(
	reports repository.ReportRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		reports:  reports,
		users:    users,
		posts:    posts,
		comments: comments,
		logger:   logger,
	}
}

// Create files a report. Reporting yourself or your own content is rejected,
// the target must exist, and a second report of the same target conflicts.
func (s *ReportService) Create(ctx context.Context, reporterID string, in CreateReportInput) (*model.Report, error) {
	targetType, err := model.ParseReportTargetType(in.TargetType)
	if err != nil {
		return nil, apperror.ValidationFailed("targetType", "targetType must be POST, COMMENT or USER")
	}
	reason, err := model.ParseReportReason(in.Reason)
	if err != nil {
		return nil, apperror.ValidationFailed("reason", "unknown report reason")
	}
	targetID := strings.TrimSpace(in.TargetID)
	if targetID == "" {
		return nil, apperror.ValidationFailed("targetId", "targetId is required")
	}
	description := strings.TrimSpace(in.Description)
	if reason == model.ReportReasonOther && description == "" {
		return nil, apperror.ValidationFailed("description", "description is required for OTHER")
	}
	if len([]rune(description)) > ReportDescriptionMaxLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", ReportDescriptionMaxLength))
	}

	ownerID, err := s.targetOwner(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if ownerID == reporterID {
		return nil, apperror.ValidationFailed("targetId", "you cannot report yourself or your own content")
	}

	report := &model.Report{
		ReporterID:  reporterID,
		TargetType:  targetType,
		TargetID:    targetID,
		Reason:      reason,
		Description: description,
	}
	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	s.logger.Info("report filed",
		slog.String("reportID", report.ID),
		slog.String("targetType", string(targetType)),
		slog.String("targetID", targetID),
	)
	return report, nil
}

// targetOwner resolves the user behind a report target.
func (s *ReportService) targetOwner(ctx context.Context, t model.ReportTargetType, id string) (string, error) {
	switch t {
	case model.ReportTargetUser:
		user, err := s.users.GetUserByID(ctx, id)
		if err != nil {
			return "", err
		}
		if user.IsDeleted() {
			return "", apperror.NotFound("user", id)
		}
		return user.ID, nil
	case model.ReportTargetPost:
		post, err := s.posts.GetPost(ctx, id, "")
		if err != nil {
			return "", err
		}
		return post.AuthorID, nil
	default:
		comment, err := s.comments.GetComment(ctx, id)
		if err != nil {
			return "", err
		}
		if comment.IsDeleted() {
			return "", apperror.NotFound("comment", id)
		}
		return comment.AuthorID, nil
	}
}

func (s *ReportService) ListMine(ctx context.Context, reporterID string) ([]model.Report, error) {
	reports, err := s.reports.ListReportsByReporter(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("service/report: listing reports: %w", err)
	}
	return reports, nil
}
