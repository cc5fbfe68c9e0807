package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

const (
	InquiryTitleMaxLength   = 100
	InquiryContentMaxLength = 5000
	InquiryAnswerMaxLength  = 5000
)

// InquiryCategories are the accepted support categories.
var InquiryCategories = []string{"account", "channel", "content", "report", "etc"}

// DefaultFAQs is seeded on startup, keyed by question.
var DefaultFAQs = []model.FAQ{
	{Category: "account", Question: "어떤 플랫폼으로 로그인할 수 있나요?", Answer: "YouTube, TikTok, Twitch, SOOP, Instagram, 치지직 계정으로 로그인할 수 있습니다.", SortOrder: 0},
	{Category: "account", Question: "여러 플랫폼 계정을 연결할 수 있나요?", Answer: "마이페이지에서 계정을 추가로 연결할 수 있으며, 가장 높은 구독자 수 기준으로 라운지가 열립니다.", SortOrder: 1},
	{Category: "channel", Question: "라운지 입장 기준은 무엇인가요?", Answer: "연결된 계정 중 가장 높은 구독자 수가 속한 구간의 라운지에 글을 쓸 수 있습니다.", SortOrder: 0},
	{Category: "channel", Question: "구독자 수는 언제 갱신되나요?", Answer: "로그인할 때마다, 또는 채널 접근 권한 새로고침을 요청할 때 갱신됩니다.", SortOrder: 1},
	{Category: "etc", Question: "탈퇴하면 작성한 글은 어떻게 되나요?", Answer: "탈퇴 후에도 작성한 글과 댓글은 남아 있습니다.", SortOrder: 0},
}

type CreateInquiryInput struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type SupportService struct {
	support repository.SupportRepository
	users   repository.UserRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewSupportService(support repository.SupportRepository, users repository.UserRepository, logger *slog.Logger) *SupportService {
	return &SupportService{
		support: support,
		users:   users,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *SupportService) CreateInquiry(ctx context.Context, userID string, in CreateInquiryInput) (*model.Inquiry, error) {
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if !validCategory(category) {
		return nil, apperror.ValidationFailed("category",
			"category must be one of "+strings.Join(InquiryCategories, ", "))
	}
	title, err := requireText("title", in.Title, InquiryTitleMaxLength)
	if err != nil {
		return nil, err
	}
	content, err := requireText("content", in.Content, InquiryContentMaxLength)
	if err != nil {
		return nil, err
	}

	inquiry := &model.Inquiry{
		UserID:   userID,
		Category: category,
		Title:    title,
		Content:  content,
	}
	if err := s.support.CreateInquiry(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("service/support: creating inquiry: %w", err)
	}
	s.logger.Info("inquiry opened", slog.String("inquiryID", inquiry.ID), slog.String("userID", userID))
	return inquiry, nil
}

func (s *SupportService) ListMyInquiries(ctx context.Context, userID string, limit, offset int) ([]model.Inquiry, error) {
	limit, offset = clampPage(limit, offset)
	return s.support.ListInquiriesByUser(ctx, userID, repository.ListOptions{Limit: limit, Offset: offset})
}

// GetInquiry is visible to its owner and to admins.
func (s *SupportService) GetInquiry(ctx context.Context, userID, inquiryID string) (*model.Inquiry, error) {
	inquiry, err := s.support.GetInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.UserID == userID {
		return inquiry, nil
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, apperror.Forbidden("you cannot view this inquiry")
	}
	return inquiry, nil
}

func (s *SupportService) AnswerInquiry(ctx context.Context, adminID, inquiryID, answer string) (*model.Inquiry, error) {
	admin, err := s.users.GetUserByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, apperror.Forbidden("only admins can answer inquiries")
	}
	answer, err = requireText("answer", answer, InquiryAnswerMaxLength)
	if err != nil {
		return nil, err
	}

	if err := s.support.AnswerInquiry(ctx, inquiryID, answer, s.now()); err != nil {
		return nil, err
	}
	s.logger.Info("inquiry answered", slog.String("inquiryID", inquiryID), slog.String("adminID", adminID))
	return s.support.GetInquiry(ctx, inquiryID)
}

func (s *SupportService) ListFAQs(ctx context.Context, category string) ([]model.FAQ, error) {
	faqs, err := s.support.ListFAQs(ctx, strings.ToLower(strings.TrimSpace(category)))
	if err != nil {
		return nil, fmt.Errorf("service/support: listing faqs: %w", err)
	}
	return faqs, nil
}

func (s *SupportService) SeedFAQs(ctx context.Context) error {
	for _, f := range DefaultFAQs {
		f := f
		f.IsActive = true
		if err := s.support.UpsertFAQ(ctx, &f); err != nil {
			return fmt.Errorf("seeding faq %q: %w", f.Question, err)
		}
	}
	return nil
}

func validCategory(c string) bool {
	for _, known := range InquiryCategories {
		if c == known {
			return true
		}
	}
	return false
}
