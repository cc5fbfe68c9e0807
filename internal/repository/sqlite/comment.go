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

var _ repository.CommentRepository = (*DB)(nil)

// commentSelect takes the viewer id twice: for the liked flag and for the
// blocked-author flag.
const commentSelect = `SELECT c.id, c.post_id, c.author_id, c.parent_id, c.content, c.status,
		c.like_count, c.created_at, c.updated_at, c.deleted_at,
		u.nickname,
		(SELECT COALESCE(MAX(a.subscriber_count), 0) FROM accounts a WHERE a.user_id = c.author_id),
		EXISTS (SELECT 1 FROM comment_likes l WHERE l.comment_id = c.id AND l.user_id = ?),
		EXISTS (SELECT 1 FROM user_blocks b WHERE b.blocker_id = ? AND b.blocked_id = c.author_id)
	FROM comments c JOIN users u ON u.id = c.author_id`

func scanComment(row rowScanner, c *model.Comment) error {
	var (
		parentID  sql.NullString
		deletedAt sql.NullTime
		nickname  sql.NullString
		author    model.Author
	)
	if err := row.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &parentID, &c.Content, &c.Status,
		&c.LikeCount, &c.CreatedAt, &c.UpdatedAt, &deletedAt,
		&nickname, &author.SubscriberCount, &c.Liked, &c.AuthorBlocked,
	); err != nil {
		return err
	}
	c.ParentID = stringPtr(parentID)
	c.DeletedAt = timePtr(deletedAt)
	author.ID = c.AuthorID
	author.Nickname = stringPtr(nickname)
	c.Author = &author
	return nil
}

// CreateComment inserts the comment with its images and hashtags and bumps
// the post's comment_count, all in one transaction. The post must be active.
func (db *DB) CreateComment(ctx context.Context, c *model.Comment, imageURLs, hashtags []string) error {
	ts := now()
	c.ID = xid.New().String()
	c.Status = model.ContentActive
	c.CreatedAt = ts
	c.UpdatedAt = ts

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE posts SET comment_count = comment_count + 1 WHERE id = ? AND status = ?`,
			c.PostID, model.ContentActive,
		)
		if err != nil {
			return fmt.Errorf("sqlite: counting comment on post %s: %w", c.PostID, err)
		}
		if err := mustAffect(res, "post", c.PostID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO comments (id, post_id, author_id, parent_id, content, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.PostID, c.AuthorID, nullString(c.ParentID), c.Content, c.Status,
			c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting comment: %w", err)
		}

		c.Images, err = insertImages(ctx, tx, commentTables, c.ID, imageURLs)
		if err != nil {
			return err
		}
		if err := attachHashtags(ctx, tx, commentTables, c.ID, hashtags); err != nil {
			return err
		}
		c.Hashtags = hashtags
		return nil
	})
}

// GetComment returns the comment even when it is soft-deleted; callers decide.
func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := scanComment(db.conn.QueryRowContext(ctx,
		commentSelect+` WHERE c.id = ?`, "", "", id,
	), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	comments := []model.Comment{c}
	if err := db.decorateComments(ctx, comments); err != nil {
		return nil, err
	}
	return &comments[0], nil
}

// ListComments returns every comment of the post oldest first. Deleted
// comments and comments by authors the viewer blocked are included, flagged,
// so the caller can keep their threads as placeholders.
func (db *DB) ListComments(ctx context.Context, postID, viewerID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = ? ORDER BY c.created_at, c.id`,
		viewerID, viewerID, postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %s: %w", postID, err)
	}

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := scanComment(rows, &c); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	rows.Close()

	if err := db.decorateComments(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (db *DB) decorateComments(ctx context.Context, comments []model.Comment) error {
	ids := make([]string, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}
	images, err := loadImages(ctx, db.conn, commentTables, ids)
	if err != nil {
		return err
	}
	tags, err := loadHashtagNames(ctx, db.conn, commentTables, ids)
	if err != nil {
		return err
	}
	for i := range comments {
		comments[i].Images = images[comments[i].ID]
		comments[i].Hashtags = tags[comments[i].ID]
	}
	return nil
}

// UpdateComment rewrites the content and replaces the hashtag set.
func (db *DB) UpdateComment(ctx context.Context, c *model.Comment, hashtags []string) error {
	c.UpdatedAt = now()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE comments SET content = ?, updated_at = ? WHERE id = ? AND status = ?`,
			c.Content, c.UpdatedAt, c.ID, model.ContentActive,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating comment %s: %w", c.ID, err)
		}
		if err := mustAffect(res, "comment", c.ID); err != nil {
			return err
		}
		if err := replaceHashtags(ctx, tx, commentTables, c.ID, hashtags); err != nil {
			return err
		}
		c.Hashtags = hashtags
		return nil
	})
}

// SoftDeleteComment marks the comment deleted, releases its hashtags and
// decrements the post's comment_count.
func (db *DB) SoftDeleteComment(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var postID string
		err := tx.QueryRowContext(ctx,
			`SELECT post_id FROM comments WHERE id = ? AND status = ?`, id, model.ContentActive,
		).Scan(&postID)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("comment", id)
			}
			return fmt.Errorf("sqlite: reading comment %s: %w", id, err)
		}

		ts := now()
		_, err = tx.ExecContext(ctx,
			`UPDATE comments SET status = ?, deleted_at = ?, updated_at = ? WHERE id = ?`,
			model.ContentDeleted, ts, ts, id,
		)
		if err != nil {
			return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
		}
		if err := releaseHashtags(ctx, tx, commentTables, id); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE posts SET comment_count = comment_count - 1 WHERE id = ?`, postID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: uncounting comment on post %s: %w", postID, err)
		}
		return nil
	})
}

func (db *DB) ToggleCommentLike(ctx context.Context, commentID, userID string) (*model.LikeResult, error) {
	return db.toggleLike(ctx, commentTables, commentID, userID)
}
