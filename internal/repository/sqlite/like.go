package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
)

// toggleLike flips the like of userID on an active post or comment.
//
// The conditional DELETE decides the direction: one affected row means the
// like existed and is now gone. Otherwise the INSERT ... ON CONFLICT DO NOTHING
// adds it. The counter moves only when a row actually changed, so a repeated
// request can never double count.
func (db *DB) toggleLike(ctx context.Context, t contentTables, contentID, userID string) (*model.LikeResult, error) {
	result := &model.LikeResult{}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var status model.ContentStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM `+t.content+` WHERE id = ?`, contentID,
		).Scan(&status)
		if err == sql.ErrNoRows || (err == nil && status != model.ContentActive) {
			return apperror.NotFound(t.resource, contentID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: reading %s %s: %w", t.resource, contentID, err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM `+t.likes+` WHERE `+t.owner+` = ? AND user_id = ?`,
			contentID, userID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: removing %s like: %w", t.resource, err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}

		delta := -1
		if removed == 0 {
			res, err = tx.ExecContext(ctx,
				`INSERT INTO `+t.likes+` (`+t.owner+`, user_id, created_at) VALUES (?, ?, ?)
				 ON CONFLICT DO NOTHING`,
				contentID, userID, now(),
			)
			if err != nil {
				return fmt.Errorf("sqlite: adding %s like: %w", t.resource, err)
			}
			added, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("sqlite: checking rows affected: %w", err)
			}
			result.Liked = true
			delta = int(added)
		}

		if delta != 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE `+t.content+` SET like_count = like_count + ? WHERE id = ?`,
				delta, contentID,
			)
			if err != nil {
				return fmt.Errorf("sqlite: updating %s like count: %w", t.resource, err)
			}
		}

		return tx.QueryRowContext(ctx,
			`SELECT like_count FROM `+t.content+` WHERE id = ?`, contentID,
		).Scan(&result.LikeCount)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
