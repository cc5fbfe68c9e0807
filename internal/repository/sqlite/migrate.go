package sqlite

import "fmt"

// migrations run in order on every start. Each one is idempotent.
var migrations = []struct {
	name string
	sql  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			nickname   TEXT UNIQUE,
			role       TEXT NOT NULL DEFAULT 'USER',
			status     TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		);
	`},
	{"accounts", `
		CREATE TABLE IF NOT EXISTS accounts (
			id                  TEXT PRIMARY KEY,
			user_id             TEXT NOT NULL REFERENCES users(id),
			provider            TEXT NOT NULL,
			provider_account_id TEXT NOT NULL,
			access_token        TEXT NOT NULL DEFAULT '',
			refresh_token       TEXT NOT NULL DEFAULT '',
			profile_name        TEXT NOT NULL DEFAULT '',
			profile_image       TEXT NOT NULL DEFAULT '',
			subscriber_count    INTEGER NOT NULL DEFAULT 0,
			created_at          DATETIME NOT NULL,
			updated_at          DATETIME NOT NULL,
			UNIQUE (provider, provider_account_id)
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
	`},
	{"channels", `
		CREATE TABLE IF NOT EXISTS channels (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			slug            TEXT NOT NULL UNIQUE,
			description     TEXT NOT NULL DEFAULT '',
			min_subscribers INTEGER NOT NULL DEFAULT 0,
			max_subscribers INTEGER,
			is_active       INTEGER NOT NULL DEFAULT 1,
			sort_order      INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS channel_access (
			user_id    TEXT NOT NULL REFERENCES users(id),
			channel_id TEXT NOT NULL REFERENCES channels(id),
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, channel_id)
		);
	`},
	{"posts", `
		CREATE TABLE IF NOT EXISTS posts (
			id            TEXT PRIMARY KEY,
			channel_id    TEXT NOT NULL REFERENCES channels(id),
			author_id     TEXT NOT NULL REFERENCES users(id),
			title         TEXT NOT NULL,
			content       TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'ACTIVE',
			like_count    INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			view_count    INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL,
			deleted_at    DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_posts_channel_created ON posts(channel_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);
		CREATE TABLE IF NOT EXISTS post_images (
			id       TEXT PRIMARY KEY,
			post_id  TEXT NOT NULL REFERENCES posts(id),
			url      TEXT NOT NULL,
			position INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_post_images_post ON post_images(post_id);
		CREATE TABLE IF NOT EXISTS post_likes (
			post_id    TEXT NOT NULL REFERENCES posts(id),
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL,
			PRIMARY KEY (post_id, user_id)
		);
	`},
	{"comments", `
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id),
			author_id  TEXT NOT NULL REFERENCES users(id),
			parent_id  TEXT REFERENCES comments(id),
			content    TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'ACTIVE',
			like_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, created_at);
		CREATE TABLE IF NOT EXISTS comment_images (
			id         TEXT PRIMARY KEY,
			comment_id TEXT NOT NULL REFERENCES comments(id),
			url        TEXT NOT NULL,
			position   INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comment_images_comment ON comment_images(comment_id);
		CREATE TABLE IF NOT EXISTS comment_likes (
			comment_id TEXT NOT NULL REFERENCES comments(id),
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL,
			PRIMARY KEY (comment_id, user_id)
		);
	`},
	{"hashtags", `
		CREATE TABLE IF NOT EXISTS hashtags (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			usage_count INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS post_hashtags (
			post_id    TEXT NOT NULL REFERENCES posts(id),
			hashtag_id TEXT NOT NULL REFERENCES hashtags(id),
			PRIMARY KEY (post_id, hashtag_id)
		);
		CREATE INDEX IF NOT EXISTS idx_post_hashtags_tag ON post_hashtags(hashtag_id);
		CREATE TABLE IF NOT EXISTS comment_hashtags (
			comment_id TEXT NOT NULL REFERENCES comments(id),
			hashtag_id TEXT NOT NULL REFERENCES hashtags(id),
			PRIMARY KEY (comment_id, hashtag_id)
		);
	`},
	{"reports_and_blocks", `
		CREATE TABLE IF NOT EXISTS reports (
			id          TEXT PRIMARY KEY,
			reporter_id TEXT NOT NULL REFERENCES users(id),
			target_type TEXT NOT NULL,
			target_id   TEXT NOT NULL,
			reason      TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'PENDING',
			created_at  DATETIME NOT NULL,
			UNIQUE (reporter_id, target_type, target_id)
		);
		CREATE TABLE IF NOT EXISTS user_blocks (
			blocker_id TEXT NOT NULL REFERENCES users(id),
			blocked_id TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL,
			PRIMARY KEY (blocker_id, blocked_id)
		);
	`},
	{"support", `
		CREATE TABLE IF NOT EXISTS inquiries (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			category    TEXT NOT NULL,
			title       TEXT NOT NULL,
			content     TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'OPEN',
			answer      TEXT,
			answered_at DATETIME,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_inquiries_user ON inquiries(user_id, created_at);
		CREATE TABLE IF NOT EXISTS faqs (
			id         TEXT PRIMARY KEY,
			category   TEXT NOT NULL,
			question   TEXT NOT NULL UNIQUE,
			answer     TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			is_active  INTEGER NOT NULL DEFAULT 1
		);
	`},
}

// migrate creates every table. CREATE ... IF NOT EXISTS makes it safe to rerun.
func (db *DB) migrate() error {
	for _, m := range migrations {
		if _, err := db.conn.Exec(m.sql); err != nil {
			return fmt.Errorf("applying %s: %w", m.name, err)
		}
	}
	return nil
}
