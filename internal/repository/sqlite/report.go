package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

var (
	_ repository.ReportRepository = (*DB)(nil)
	_ repository.BlockRepository  = (*DB)(nil)
)

// CreateReport inserts a PENDING report. The unique key on
// (reporter, target type, target id) turns a repeat into apperror.ErrConflict.
func (db *DB) CreateReport(ctx context.Context, r *model.Report) error {
	r.ID = xid.New().String()
	r.Status = model.ReportPending
	r.CreatedAt = now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO reports (id, reporter_id, target_type, target_id, reason, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(reporter_id, target_type, target_id) DO NOTHING`,
		r.ID, r.ReporterID, r.TargetType, r.TargetID, r.Reason, r.Description, r.Status, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.Conflict("targetId", "target is already reported")
	}
	return nil
}

func (db *DB) ListReportsByReporter(ctx context.Context, reporterID string) ([]model.Report, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, reporter_id, target_type, target_id, reason, description, status, created_at
		 FROM reports WHERE reporter_id = ? ORDER BY created_at DESC, id DESC`,
		reporterID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reports of %s: %w", reporterID, err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(&r.ID, &r.ReporterID, &r.TargetType, &r.TargetID,
			&r.Reason, &r.Description, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning report row: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reports: %w", err)
	}
	return reports, nil
}

// CreateBlock inserts the pair. A repeat is apperror.ErrConflict.
func (db *DB) CreateBlock(ctx context.Context, blockerID, blockedID string) (*model.UserBlock, error) {
	b := &model.UserBlock{BlockerID: blockerID, BlockedID: blockedID, CreatedAt: now()}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_blocks (blocker_id, blocked_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(blocker_id, blocked_id) DO NOTHING`,
		b.BlockerID, b.BlockedID, b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting block: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.Conflict("userId", "user is already blocked")
	}
	return b, nil
}

// DeleteBlock removes the pair; apperror.ErrNotFound when it never existed.
func (db *DB) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_blocks WHERE blocker_id = ? AND blocked_id = ?`,
		blockerID, blockedID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting block: %w", err)
	}
	return mustAffect(res, "block", blockedID)
}

// ListBlocks returns the users blocked by blockerID, newest first.
func (db *DB) ListBlocks(ctx context.Context, blockerID string) ([]model.UserBlock, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT b.blocker_id, b.blocked_id, b.created_at, u.nickname,
			(SELECT COALESCE(MAX(a.subscriber_count), 0) FROM accounts a WHERE a.user_id = b.blocked_id)
		 FROM user_blocks b JOIN users u ON u.id = b.blocked_id
		 WHERE b.blocker_id = ?
		 ORDER BY b.created_at DESC`,
		blockerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blocks of %s: %w", blockerID, err)
	}
	defer rows.Close()

	blocks := []model.UserBlock{}
	for rows.Next() {
		var (
			b        model.UserBlock
			author   model.Author
			nickname sql.NullString
		)
		if err := rows.Scan(&b.BlockerID, &b.BlockedID, &b.CreatedAt, &nickname, &author.SubscriberCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning block row: %w", err)
		}
		author.ID = b.BlockedID
		author.Nickname = stringPtr(nickname)
		b.Blocked = &author
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blocks: %w", err)
	}
	return blocks, nil
}
