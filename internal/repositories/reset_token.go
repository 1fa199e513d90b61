package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"todo-sample/internal/models"
)

type ResetTokenRepository interface {
	Save(ctx context.Context, token *models.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context) error
}

// SQLResetTokenRepo は password_reset_tokens テーブルの実装です。
type SQLResetTokenRepo struct {
	DB *sql.DB
}

func NewSQLResetTokenRepo(db *sql.DB) *SQLResetTokenRepo {
	return &SQLResetTokenRepo{DB: db}
}

func (r *SQLResetTokenRepo) Save(ctx context.Context, t *models.PasswordResetToken) error {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (id, user_id, token, expires_at, created_at) VALUES (?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.Token, t.ExpiresAt.UTC(), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("could not insert reset token: %w", err)
	}
	return nil
}

func (r *SQLResetTokenRepo) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, used_at, created_at FROM password_reset_tokens WHERE token = ?",
		token,
	)

	var pr models.PasswordResetToken
	var usedAt sql.NullTime
	if err := row.Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.ExpiresAt, &usedAt, &pr.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		log.Printf("Failed to scan reset token: %v", err)
		return nil, fmt.Errorf("could not query reset token: %w", err)
	}
	if usedAt.Valid {
		pr.UsedAt = &usedAt.Time
	}
	return &pr, nil
}

// CleanupExpired は使用済みまたは期限切れのトークンを削除します。
func (r *SQLResetTokenRepo) CleanupExpired(ctx context.Context) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM password_reset_tokens WHERE used_at IS NOT NULL OR expires_at < ?",
		time.Now().UTC(),
	)
	if err != nil {
		log.Printf("[CleanupExpired] ERROR: %v", err)
		return fmt.Errorf("could not clean up reset tokens: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Printf("[CleanupExpired] %d expired or used tokens cleaned", n)
	}
	return nil
}

func (r *SQLResetTokenRepo) MarkUsed(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	return err
}
