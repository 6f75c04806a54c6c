package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *models.Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Account, error)
	ListByProfileID(ctx context.Context, profileID int64) ([]*models.Account, error)
	CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error)
	UpdateStatus(ctx context.Context, status string, accountID int64) error
	SetToken(ctx context.Context, accountID int64, accessToken string) error
	Remove(ctx context.Context, id int64) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, user_id, profile_id, platform, handle, display_name,
	profile_picture_url, access_token, account_status, can_video, can_story,
	created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*models.Account, error) {
	var a models.Account
	var profileID sql.NullInt64

	err := row.Scan(&a.ID, &a.UserID, &profileID, &a.Platform, &a.Handle, &a.DisplayName,
		&a.ProfilePicture, &a.AccessToken, &a.AccountStatus, &a.CanVideo, &a.CanStory,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.ProfileID = profileID.Int64
	return &a, nil
}

func (r *accountRepository) Create(ctx context.Context, tx *sql.Tx, a *models.Account) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
			INSERT INTO accounts(
				user_id,
				profile_id,
				platform,
				handle,
				display_name,
				profile_picture_url,
				access_token,
				account_status,
				can_video,
				can_story
			)
			VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`

	args := []interface{}{a.UserID, a.ProfileID, a.Platform, a.Handle, a.DisplayName,
		a.ProfilePicture, a.AccessToken, a.AccountStatus, a.CanVideo, a.CanStory}

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return a, nil
}

func (r *accountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// ListByProfileID returns a profile's accounts in insertion order. The
// resolver relies on that order when it picks the first linked account.
func (r *accountRepository) ListByProfileID(ctx context.Context, profileID int64) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE profile_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	query := "SELECT 1 FROM accounts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, accountID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *accountRepository) UpdateStatus(ctx context.Context, status string, accountID int64) error {
	query := `
		UPDATE accounts
		SET account_status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), accountID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *accountRepository) SetToken(ctx context.Context, accountID int64, accessToken string) error {
	query := `
		UPDATE accounts
		SET access_token = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, accessToken, time.Now(), accountID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *accountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
