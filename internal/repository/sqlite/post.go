package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// postSelect takes the viewer id as its first argument for the liked flag.
const postSelect = `SELECT p.id, p.channel_id, p.author_id, p.title, p.content, p.status,
		p.like_count, p.comment_count, p.view_count, p.created_at, p.updated_at, p.deleted_at,
		u.nickname,
		(SELECT COALESCE(MAX(a.subscriber_count), 0) FROM accounts a WHERE a.user_id = p.author_id),
		EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?)
	FROM posts p JOIN users u ON u.id = p.author_id`

func scanPost(row rowScanner, p *model.Post) error {
	var (
		deletedAt sql.NullTime
		nickname  sql.NullString
		author    model.Author
	)
	if err := row.Scan(
		&p.ID, &p.ChannelID, &p.AuthorID, &p.Title, &p.Content, &p.Status,
		&p.LikeCount, &p.CommentCount, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt, &deletedAt,
		&nickname, &author.SubscriberCount, &p.Liked,
	); err != nil {
		return err
	}
	p.DeletedAt = timePtr(deletedAt)
	author.ID = p.AuthorID
	author.Nickname = stringPtr(nickname)
	p.Author = &author
	return nil
}

// CreatePost inserts the post, its images and hashtag links in one transaction.
func (db *DB) CreatePost(ctx context.Context, post *model.Post, imageURLs, hashtags []string) error {
	ts := now()
	post.ID = xid.New().String()
	post.Status = model.ContentActive
	post.CreatedAt = ts
	post.UpdatedAt = ts

	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO posts (id, channel_id, author_id, title, content, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			post.ID, post.ChannelID, post.AuthorID, post.Title, post.Content, post.Status,
			post.CreatedAt, post.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting post: %w", err)
		}

		post.Images, err = insertImages(ctx, tx, postTables, post.ID, imageURLs)
		if err != nil {
			return err
		}
		if err := attachHashtags(ctx, tx, postTables, post.ID, hashtags); err != nil {
			return err
		}
		post.Hashtags = hashtags
		return nil
	})
}

// GetPost returns an active post. Deleted posts are reported as not found.
func (db *DB) GetPost(ctx context.Context, id, viewerID string) (*model.Post, error) {
	var p model.Post
	err := scanPost(db.conn.QueryRowContext(ctx,
		postSelect+` WHERE p.id = ? AND p.status = ?`,
		viewerID, id, model.ContentActive,
	), &p)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	posts := []model.Post{p}
	if err := db.decoratePosts(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPosts returns active posts newest first. When the filter carries a
// viewer, authors that viewer blocked are left out.
func (db *DB) ListPosts(ctx context.Context, f repository.PostFilter) ([]model.Post, error) {
	var (
		where = []string{"p.status = ?"}
		args  = []any{f.ViewerID, model.ContentActive}
	)
	if f.ChannelID != "" {
		where = append(where, "p.channel_id = ?")
		args = append(args, f.ChannelID)
	}
	if f.AuthorID != "" {
		where = append(where, "p.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.Hashtag != "" {
		where = append(where, `p.id IN (SELECT j.post_id FROM post_hashtags j
			JOIN hashtags h ON h.id = j.hashtag_id WHERE h.name = ?)`)
		args = append(args, f.Hashtag)
	}
	if f.ViewerID != "" {
		where = append(where, "p.author_id NOT IN (SELECT blocked_id FROM user_blocks WHERE blocker_id = ?)")
		args = append(args, f.ViewerID)
	}
	limit, offset := page(f.ListOptions)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		postSelect+` WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := scanPost(rows, &p); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	rows.Close()

	if err := db.decoratePosts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// decoratePosts fills images and hashtags. It must run after the post rows
// are closed: the pool has a single connection.
func (db *DB) decoratePosts(ctx context.Context, posts []model.Post) error {
	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	images, err := loadImages(ctx, db.conn, postTables, ids)
	if err != nil {
		return err
	}
	tags, err := loadHashtagNames(ctx, db.conn, postTables, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].Images = images[posts[i].ID]
		posts[i].Hashtags = tags[posts[i].ID]
	}
	return nil
}

// UpdatePost rewrites title and content and replaces images and hashtags.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post, imageURLs, hashtags []string) error {
	post.UpdatedAt = now()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ? AND status = ?`,
			post.Title, post.Content, post.UpdatedAt, post.ID, model.ContentActive,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
		}
		if err := mustAffect(res, "post", post.ID); err != nil {
			return err
		}

		post.Images, err = replaceImages(ctx, tx, postTables, post.ID, imageURLs)
		if err != nil {
			return err
		}
		if err := replaceHashtags(ctx, tx, postTables, post.ID, hashtags); err != nil {
			return err
		}
		post.Hashtags = hashtags
		return nil
	})
}

// SoftDeletePost marks the post deleted and releases its hashtags.
func (db *DB) SoftDeletePost(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		res, err := tx.ExecContext(ctx,
			`UPDATE posts SET status = ?, deleted_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
			model.ContentDeleted, ts, ts, id, model.ContentActive,
		)
		if err != nil {
			return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
		}
		if err := mustAffect(res, "post", id); err != nil {
			return err
		}
		return releaseHashtags(ctx, tx, postTables, id)
	})
}

func (db *DB) IncrementPostViews(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = ? AND status = ?`,
		id, model.ContentActive,
	)
	if err != nil {
		return fmt.Errorf("sqlite: counting view of post %s: %w", id, err)
	}
	return mustAffect(res, "post", id)
}

func (db *DB) TogglePostLike(ctx context.Context, postID, userID string) (*model.LikeResult, error) {
	return db.toggleLike(ctx, postTables, postID, userID)
}

// mustAffect turns a zero-row UPDATE into a NotFound.
func mustAffect(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
