package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

var _ repository.HashtagRepository = (*DB)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// contentTables names the side tables of one content kind (posts or comments).
type contentTables struct {
	resource string // used in NotFound messages
	content  string
	owner    string // foreign key column in the side tables
	images   string
	likes    string
	hashtags string
}

var (
	postTables = contentTables{
		resource: "post",
		content:  "posts",
		owner:    "post_id",
		images:   "post_images",
		likes:    "post_likes",
		hashtags: "post_hashtags",
	}
	commentTables = contentTables{
		resource: "comment",
		content:  "comments",
		owner:    "comment_id",
		images:   "comment_images",
		likes:    "comment_likes",
		hashtags: "comment_hashtags",
	}
)

// attachHashtags upserts every name (usage_count starts at 1 or is bumped by
// one) and links it to the owner. Names must already be normalized.
func attachHashtags(ctx context.Context, tx *sql.Tx, t contentTables, ownerID string, names []string) error {
	ts := now()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var hashtagID string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO hashtags (id, name, usage_count, created_at, updated_at)
			 VALUES (?, ?, 1, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
				usage_count = usage_count + 1,
				updated_at = excluded.updated_at
			 RETURNING id`,
			xid.New().String(), name, ts, ts,
		).Scan(&hashtagID)
		if err != nil {
			return fmt.Errorf("sqlite: upserting hashtag %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO `+t.hashtags+` (`+t.owner+`, hashtag_id) VALUES (?, ?)`,
			ownerID, hashtagID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: linking hashtag %q to %s %s: %w", name, t.resource, ownerID, err)
		}
	}
	return nil
}

// releaseHashtags decrements usage_count once per link of the owner.
// The link rows are kept.
func releaseHashtags(ctx context.Context, tx *sql.Tx, t contentTables, ownerID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE hashtags SET usage_count = usage_count - 1, updated_at = ?
		 WHERE id IN (SELECT hashtag_id FROM `+t.hashtags+` WHERE `+t.owner+` = ?)`,
		now(), ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: releasing hashtags of %s %s: %w", t.resource, ownerID, err)
	}
	return nil
}

// replaceHashtags is the edit path: release and unlink the current set, then
// attach the new one.
func replaceHashtags(ctx context.Context, tx *sql.Tx, t contentTables, ownerID string, names []string) error {
	if err := releaseHashtags(ctx, tx, t, ownerID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM `+t.hashtags+` WHERE `+t.owner+` = ?`, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unlinking hashtags of %s %s: %w", t.resource, ownerID, err)
	}
	return attachHashtags(ctx, tx, t, ownerID, names)
}

// insertImages stores urls in order; position is the slice index.
func insertImages(ctx context.Context, tx *sql.Tx, t contentTables, ownerID string, urls []string) ([]model.Image, error) {
	images := make([]model.Image, 0, len(urls))
	for i, url := range urls {
		img := model.Image{ID: xid.New().String(), URL: url, Position: i}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+t.images+` (id, `+t.owner+`, url, position) VALUES (?, ?, ?, ?)`,
			img.ID, ownerID, img.URL, img.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: inserting image of %s %s: %w", t.resource, ownerID, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func replaceImages(ctx context.Context, tx *sql.Tx, t contentTables, ownerID string, urls []string) ([]model.Image, error) {
	_, err := tx.ExecContext(ctx, `DELETE FROM `+t.images+` WHERE `+t.owner+` = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: deleting images of %s %s: %w", t.resource, ownerID, err)
	}
	return insertImages(ctx, tx, t, ownerID, urls)
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func idArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// loadImages returns the images of every owner keyed by owner id, in position order.
func loadImages(ctx context.Context, q querier, t contentTables, ownerIDs []string) (map[string][]model.Image, error) {
	out := make(map[string][]model.Image, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+t.owner+`, id, url, position FROM `+t.images+`
		 WHERE `+t.owner+` IN (`+placeholders(len(ownerIDs))+`)
		 ORDER BY `+t.owner+`, position`,
		idArgs(ownerIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading %s images: %w", t.resource, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ownerID string
			img     model.Image
		)
		if err := rows.Scan(&ownerID, &img.ID, &img.URL, &img.Position); err != nil {
			return nil, fmt.Errorf("sqlite: scanning image row: %w", err)
		}
		out[ownerID] = append(out[ownerID], img)
	}
	return out, rows.Err()
}

// loadHashtagNames returns the linked hashtag names of every owner, sorted by name.
func loadHashtagNames(ctx context.Context, q querier, t contentTables, ownerIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx,
		`SELECT j.`+t.owner+`, h.name FROM `+t.hashtags+` j
		 JOIN hashtags h ON h.id = j.hashtag_id
		 WHERE j.`+t.owner+` IN (`+placeholders(len(ownerIDs))+`)
		 ORDER BY j.`+t.owner+`, h.name`,
		idArgs(ownerIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading %s hashtags: %w", t.resource, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID, name string
		if err := rows.Scan(&ownerID, &name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning hashtag row: %w", err)
		}
		out[ownerID] = append(out[ownerID], name)
	}
	return out, rows.Err()
}

func (db *DB) queryHashtags(ctx context.Context, query string, args ...any) ([]model.Hashtag, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing hashtags: %w", err)
	}
	defer rows.Close()

	tags := []model.Hashtag{}
	for rows.Next() {
		var h model.Hashtag
		if err := rows.Scan(&h.ID, &h.Name, &h.UsageCount, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning hashtag row: %w", err)
		}
		tags = append(tags, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating hashtags: %w", err)
	}
	return tags, nil
}

// PopularHashtags returns hashtags still in use, most used first.
func (db *DB) PopularHashtags(ctx context.Context, limit int) ([]model.Hashtag, error) {
	limit, _ = page(repository.ListOptions{Limit: limit})
	return db.queryHashtags(ctx,
		`SELECT id, name, usage_count, created_at, updated_at FROM hashtags
		 WHERE usage_count > 0
		 ORDER BY usage_count DESC, name
		 LIMIT ?`,
		limit,
	)
}

// SearchHashtags matches names starting with prefix.
func (db *DB) SearchHashtags(ctx context.Context, prefix string, limit int) ([]model.Hashtag, error) {
	limit, _ = page(repository.ListOptions{Limit: limit})
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return db.queryHashtags(ctx,
		`SELECT id, name, usage_count, created_at, updated_at FROM hashtags
		 WHERE name LIKE ? ESCAPE '\' AND usage_count > 0
		 ORDER BY usage_count DESC, name
		 LIMIT ?`,
		escaped+"%", limit,
	)
}
