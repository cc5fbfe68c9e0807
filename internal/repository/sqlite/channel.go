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

var _ repository.ChannelRepository = (*DB)(nil)

const channelColumns = `c.id, c.name, c.slug, c.description, c.min_subscribers, c.max_subscribers,
	c.is_active, c.sort_order, c.created_at, c.updated_at`

func scanChannel(row rowScanner, c *model.Channel) error {
	var max sql.NullInt64
	if err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.MinSubscribers, &max,
		&c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return err
	}
	if max.Valid {
		v := max.Int64
		c.MaxSubscribers = &v
	}
	return nil
}

func (db *DB) queryChannels(ctx context.Context, query string, args ...any) ([]model.Channel, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing channels: %w", err)
	}
	defer rows.Close()

	channels := []model.Channel{}
	for rows.Next() {
		var c model.Channel
		if err := scanChannel(rows, &c); err != nil {
			return nil, fmt.Errorf("sqlite: scanning channel row: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating channels: %w", err)
	}
	return channels, nil
}

// ListActiveChannels returns every active channel ordered by sort_order.
func (db *DB) ListActiveChannels(ctx context.Context) ([]model.Channel, error) {
	return db.queryChannels(ctx,
		`SELECT `+channelColumns+` FROM channels c
		 WHERE c.is_active = 1
		 ORDER BY c.sort_order, c.name`)
}

// ListAccessibleChannels applies the band predicate in SQL:
// min_subscribers <= n AND (max_subscribers IS NULL OR n <= max_subscribers).
func (db *DB) ListAccessibleChannels(ctx context.Context, subscriberCount int64) ([]model.Channel, error) {
	return db.queryChannels(ctx,
		`SELECT `+channelColumns+` FROM channels c
		 WHERE c.is_active = 1
		   AND c.min_subscribers <= ?
		   AND (c.max_subscribers IS NULL OR ? <= c.max_subscribers)
		 ORDER BY c.sort_order, c.name`,
		subscriberCount, subscriberCount,
	)
}

// GetChannel looks a channel up by id first, then by slug.
func (db *DB) GetChannel(ctx context.Context, idOrSlug string) (*model.Channel, error) {
	var c model.Channel
	err := scanChannel(db.conn.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM channels c WHERE c.id = ? OR c.slug = ? LIMIT 1`,
		idOrSlug, idOrSlug,
	), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("channel", idOrSlug)
		}
		return nil, fmt.Errorf("sqlite: getting channel %s: %w", idOrSlug, err)
	}
	return &c, nil
}

// UpsertChannel inserts the channel or updates the existing row with the same
// slug. Seeding calls this on every start.
func (db *DB) UpsertChannel(ctx context.Context, c *model.Channel) error {
	ts := now()
	if c.ID == "" {
		c.ID = xid.New().String()
	}
	var max sql.NullInt64
	if c.MaxSubscribers != nil {
		max = sql.NullInt64{Int64: *c.MaxSubscribers, Valid: true}
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO channels (id, name, slug, description, min_subscribers, max_subscribers,
			is_active, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			min_subscribers = excluded.min_subscribers,
			max_subscribers = excluded.max_subscribers,
			is_active = excluded.is_active,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.Slug, c.Description, c.MinSubscribers, max,
		c.IsActive, c.SortOrder, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting channel %s: %w", c.Slug, err)
	}

	// Reload so an existing row keeps its original id and created_at.
	stored, err := db.GetChannel(ctx, c.Slug)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// UpsertChannelAccess writes one grant per channel with the given expiry,
// renewing rows that already exist.
func (db *DB) UpsertChannelAccess(ctx context.Context, userID string, channelIDs []string, expiresAt time.Time) ([]model.ChannelAccess, error) {
	grants := make([]model.ChannelAccess, 0, len(channelIDs))
	expiresAt = expiresAt.UTC()

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		for _, channelID := range channelIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO channel_access (user_id, channel_id, expires_at, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(user_id, channel_id) DO UPDATE SET
					expires_at = excluded.expires_at,
					updated_at = excluded.updated_at`,
				userID, channelID, expiresAt, ts, ts,
			)
			if err != nil {
				return fmt.Errorf("sqlite: upserting access %s/%s: %w", userID, channelID, err)
			}

			g := model.ChannelAccess{UserID: userID, ChannelID: channelID}
			err = tx.QueryRowContext(ctx,
				`SELECT expires_at, created_at, updated_at FROM channel_access
				 WHERE user_id = ? AND channel_id = ?`,
				userID, channelID,
			).Scan(&g.ExpiresAt, &g.CreatedAt, &g.UpdatedAt)
			if err != nil {
				return fmt.Errorf("sqlite: reading access %s/%s: %w", userID, channelID, err)
			}
			grants = append(grants, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// GetChannelAccess returns the cached grant row regardless of expiry.
func (db *DB) GetChannelAccess(ctx context.Context, userID, channelID string) (*model.ChannelAccess, error) {
	var g model.ChannelAccess
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, channel_id, expires_at, created_at, updated_at
		 FROM channel_access WHERE user_id = ? AND channel_id = ?`,
		userID, channelID,
	).Scan(&g.UserID, &g.ChannelID, &g.ExpiresAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("channel access", userID+"/"+channelID)
		}
		return nil, fmt.Errorf("sqlite: getting access %s/%s: %w", userID, channelID, err)
	}
	return &g, nil
}

// ListValidChannelAccess returns the unexpired grants of a user with their channels.
// Stale rows are never deleted; they are simply filtered out here.
func (db *DB) ListValidChannelAccess(ctx context.Context, userID string, at time.Time) ([]model.ChannelAccess, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT ca.user_id, ca.channel_id, ca.expires_at, ca.created_at, ca.updated_at, `+channelColumns+`
		 FROM channel_access ca JOIN channels c ON c.id = ca.channel_id
		 WHERE ca.user_id = ? AND ca.expires_at > ? AND c.is_active = 1
		 ORDER BY c.sort_order, c.name`,
		userID, at.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing access of %s: %w", userID, err)
	}
	defer rows.Close()

	grants := []model.ChannelAccess{}
	for rows.Next() {
		var (
			g   model.ChannelAccess
			c   model.Channel
			max sql.NullInt64
		)
		if err := rows.Scan(
			&g.UserID, &g.ChannelID, &g.ExpiresAt, &g.CreatedAt, &g.UpdatedAt,
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.MinSubscribers, &max,
			&c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning access row: %w", err)
		}
		if max.Valid {
			v := max.Int64
			c.MaxSubscribers = &v
		}
		g.Channel = &c
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating access: %w", err)
	}
	return grants, nil
}
