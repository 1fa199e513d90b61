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

const todoColumns = "id, user_id, name, description, created_at"

// TodoRepository はTodoテーブルを操作します。
type TodoRepository struct {
	DB  *sql.DB
	now func() time.Time
}

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create はIDと作成日時を採番してTodoを挿入します。
func (r *TodoRepository) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = r.now()

	query := "INSERT INTO todos (" + todoColumns + ") VALUES (?, ?, ?, ?, ?)"
	if _, err := r.DB.ExecContext(ctx, query, t.ID, t.UserID, t.Name, t.Description, t.CreatedAt); err != nil {
		log.Printf("Failed to insert todo: %v", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return t, nil
}

// FindAll はすべてのTodoを作成順に取得します。
func (r *TodoRepository) FindAll(ctx context.Context) ([]*models.Todo, error) {
	return r.query(ctx, "SELECT "+todoColumns+" FROM todos ORDER BY created_at ASC, id ASC")
}

// FindByUserID は指定ユーザーのTodoを作成順に取得します。
func (r *TodoRepository) FindByUserID(ctx context.Context, userID string) ([]*models.Todo, error) {
	return r.query(ctx, "SELECT "+todoColumns+" FROM todos WHERE user_id = ? ORDER BY created_at ASC, id ASC", userID)
}

// FindByID は指定されたIDのTodoを取得します。
func (r *TodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	var t models.Todo
	err := r.DB.QueryRowContext(ctx, "SELECT "+todoColumns+" FROM todos WHERE id = ?", id).
		Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		log.Printf("Failed to query todo by ID: %v", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return &t, nil
}

// Delete は指定されたIDのTodoを削除します。
func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete todo: %v", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) query(ctx context.Context, query string, args ...any) ([]*models.Todo, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("Failed to query todos: %v", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	// JSON で null にならないよう空スライスで初期化
	todos := make([]*models.Todo, 0)
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			log.Printf("Failed to scan todo: %v", err)
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}
