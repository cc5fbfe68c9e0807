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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `u.id, u.nickname, u.role, u.status, u.created_at, u.updated_at, u.deleted_at`

const accountColumns = `a.id, a.user_id, a.provider, a.provider_account_id, a.access_token,
	a.refresh_token, a.profile_name, a.profile_image, a.subscriber_count, a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *model.User) error {
	var (
		nickname  sql.NullString
		deletedAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &nickname, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt, &deletedAt); err != nil {
		return err
	}
	u.Nickname = stringPtr(nickname)
	u.DeletedAt = timePtr(deletedAt)
	return nil
}

func scanAccount(row rowScanner, a *model.Account) error {
	return row.Scan(
		&a.ID, &a.UserID, &a.Provider, &a.ProviderAccountID, &a.AccessToken,
		&a.RefreshToken, &a.ProfileName, &a.ProfileImage, &a.SubscriberCount,
		&a.CreatedAt, &a.UpdatedAt,
	)
}

// GetUserByID retrieves a user by their internal ID, withdrawn users included.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id,
	), &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

// FindAccount looks up an account by (provider, provider_account_id) and
// returns it together with its owner.
func (db *DB) FindAccount(ctx context.Context, provider model.Provider, providerAccountID string) (*model.Account, *model.User, error) {
	var (
		a         model.Account
		u         model.User
		nickname  sql.NullString
		deletedAt sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+`, `+userColumns+`
		 FROM accounts a JOIN users u ON u.id = a.user_id
		 WHERE a.provider = ? AND a.provider_account_id = ?`,
		provider, providerAccountID,
	).Scan(
		&a.ID, &a.UserID, &a.Provider, &a.ProviderAccountID, &a.AccessToken,
		&a.RefreshToken, &a.ProfileName, &a.ProfileImage, &a.SubscriberCount,
		&a.CreatedAt, &a.UpdatedAt,
		&u.ID, &nickname, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, apperror.NotFound("account", string(provider)+":"+providerAccountID)
		}
		return nil, nil, fmt.Errorf("sqlite: finding account %s/%s: %w", provider, providerAccountID, err)
	}
	u.Nickname = stringPtr(nickname)
	u.DeletedAt = timePtr(deletedAt)
	return &a, &u, nil
}

// CreateUserWithAccount inserts a new user (nickname unset) and its first
// account in a single transaction.
func (db *DB) CreateUserWithAccount(ctx context.Context, account *model.Account) (*model.User, error) {
	ts := now()
	user := &model.User{
		ID:        xid.New().String(),
		Role:      model.RoleUser,
		Status:    model.UserStatusActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, role, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			user.ID, user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting user: %w", err)
		}

		account.UserID = user.ID
		return insertAccount(ctx, tx, account)
	})
	if err != nil {
		return nil, err
	}

	user.Accounts = []model.Account{*account}
	return user, nil
}

// CreateAccount links a new provider identity to an existing user.
// A duplicate (provider, provider_account_id) surfaces as apperror.ErrConflict.
func (db *DB) CreateAccount(ctx context.Context, account *model.Account) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return insertAccount(ctx, tx, account)
	})
}

func insertAccount(ctx context.Context, tx *sql.Tx, a *model.Account) error {
	ts := now()
	a.ID = xid.New().String()
	a.CreatedAt = ts
	a.UpdatedAt = ts

	_, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, provider, provider_account_id, access_token,
			refresh_token, profile_name, profile_image, subscriber_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Provider, a.ProviderAccountID, a.AccessToken,
		a.RefreshToken, a.ProfileName, a.ProfileImage, a.SubscriberCount, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("providerAccountId", "account is already linked to another user")
		}
		return fmt.Errorf("sqlite: inserting account %s/%s: %w", a.Provider, a.ProviderAccountID, err)
	}
	return nil
}

// UpdateAccount refreshes the tokens, profile and subscriber count of an
// existing account. The owning user is never touched.
func (db *DB) UpdateAccount(ctx context.Context, a *model.Account) error {
	a.UpdatedAt = now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE accounts
		 SET access_token = ?, refresh_token = ?, profile_name = ?, profile_image = ?,
		     subscriber_count = ?, updated_at = ?
		 WHERE id = ?`,
		a.AccessToken, a.RefreshToken, a.ProfileName, a.ProfileImage,
		a.SubscriberCount, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating account %s: %w", a.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("account", a.ID)
	}
	return nil
}

// ListAccounts returns the user's linked accounts, oldest first.
func (db *DB) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts a WHERE a.user_id = ? ORDER BY a.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing accounts of %s: %w", userID, err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, fmt.Errorf("sqlite: scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating accounts: %w", err)
	}
	return accounts, nil
}

// MaxSubscriberCount returns max(subscriber_count) across the user's accounts, 0 when none.
func (db *DB) MaxSubscriberCount(ctx context.Context, userID string) (int64, error) {
	var best int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(subscriber_count), 0) FROM accounts WHERE user_id = ?`, userID,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("sqlite: max subscriber count of %s: %w", userID, err)
	}
	return best, nil
}

// UpdateNickname sets the nickname of an active user. Nicknames are unique.
func (db *DB) UpdateNickname(ctx context.Context, userID, nickname string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET nickname = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nickname, now(), userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("nickname", "nickname is already taken")
		}
		return fmt.Errorf("sqlite: updating nickname of %s: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

// WithdrawUser soft-deletes the user. Rows are never removed.
func (db *DB) WithdrawUser(ctx context.Context, userID string) error {
	ts := now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET status = ?, deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		model.UserStatusWithdrawn, ts, ts, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: withdrawing user %s: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}
