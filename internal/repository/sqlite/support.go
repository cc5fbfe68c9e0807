package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

var _ repository.SupportRepository = (*DB)(nil)

const inquiryColumns = `id, user_id, category, title, content, status, answer, answered_at, created_at, updated_at`

func scanInquiry(row rowScanner, q *model.Inquiry) error {
	var (
		answer     sql.NullString
		answeredAt sql.NullTime
	)
	if err := row.Scan(&q.ID, &q.UserID, &q.Category, &q.Title, &q.Content, &q.Status,
		&answer, &answeredAt, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return err
	}
	q.Answer = stringPtr(answer)
	q.AnsweredAt = timePtr(answeredAt)
	return nil
}

func (db *DB) CreateInquiry(ctx context.Context, q *model.Inquiry) error {
	ts := now()
	q.ID = xid.New().String()
	q.Status = model.InquiryOpen
	q.CreatedAt = ts
	q.UpdatedAt = ts

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO inquiries (id, user_id, category, title, content, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Category, q.Title, q.Content, q.Status, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting inquiry: %w", err)
	}
	return nil
}

func (db *DB) GetInquiry(ctx context.Context, id string) (*model.Inquiry, error) {
	var q model.Inquiry
	err := scanInquiry(db.conn.QueryRowContext(ctx,
		`SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id,
	), &q)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("inquiry", id)
		}
		return nil, fmt.Errorf("sqlite: getting inquiry %s: %w", id, err)
	}
	return &q, nil
}

func (db *DB) ListInquiriesByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Inquiry, error) {
	limit, offset := page(opts)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+inquiryColumns+` FROM inquiries WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing inquiries of %s: %w", userID, err)
	}
	defer rows.Close()

	inquiries := []model.Inquiry{}
	for rows.Next() {
		var q model.Inquiry
		if err := scanInquiry(rows, &q); err != nil {
			return nil, fmt.Errorf("sqlite: scanning inquiry row: %w", err)
		}
		inquiries = append(inquiries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating inquiries: %w", err)
	}
	return inquiries, nil
}

// AnswerInquiry stores the answer and flips the status. Answering again
// overwrites the previous answer.
func (db *DB) AnswerInquiry(ctx context.Context, id, answer string, answeredAt time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE inquiries SET answer = ?, answered_at = ?, status = ?, updated_at = ? WHERE id = ?`,
		answer, answeredAt.UTC(), model.InquiryAnswered, now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: answering inquiry %s: %w", id, err)
	}
	return mustAffect(res, "inquiry", id)
}

// ListFAQs returns active FAQs, optionally narrowed to one category.
func (db *DB) ListFAQs(ctx context.Context, category string) ([]model.FAQ, error) {
	query := `SELECT id, category, question, answer, sort_order, is_active FROM faqs WHERE is_active = 1`
	var args []any
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY category, sort_order, question`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing faqs: %w", err)
	}
	defer rows.Close()

	faqs := []model.FAQ{}
	for rows.Next() {
		var f model.FAQ
		if err := rows.Scan(&f.ID, &f.Category, &f.Question, &f.Answer, &f.SortOrder, &f.IsActive); err != nil {
			return nil, fmt.Errorf("sqlite: scanning faq row: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating faqs: %w", err)
	}
	return faqs, nil
}

// UpsertFAQ is keyed by question so seeding can run on every start.
func (db *DB) UpsertFAQ(ctx context.Context, f *model.FAQ) error {
	if f.ID == "" {
		f.ID = xid.New().String()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO faqs (id, category, question, answer, sort_order, is_active)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(question) DO UPDATE SET
			category = excluded.category,
			answer = excluded.answer,
			sort_order = excluded.sort_order,
			is_active = excluded.is_active`,
		f.ID, f.Category, f.Question, f.Answer, f.SortOrder, f.IsActive,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting faq: %w", err)
	}
	return db.conn.QueryRowContext(ctx,
		`SELECT id FROM faqs WHERE question = ?`, f.Question,
	).Scan(&f.ID)
}
