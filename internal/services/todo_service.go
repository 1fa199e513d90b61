package services

import (
	"context"

	"todo-sample/internal/models"
	"todo-sample/internal/repositories"
)

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	todoRepo *repositories.TodoRepository
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo *repositories.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

// CreateTodo は新しいTodoを作成します。所有者は常に認証済みユーザーです。
func (s *TodoService) CreateTodo(ctx context.Context, in models.CreateTodoInput, userID string) (*models.Todo, error) {
	if in.UserID != "" && in.UserID != userID {
		return nil, repositories.ErrTodoForbidden
	}
	return s.todoRepo.Create(ctx, &models.Todo{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
	})
}

// GetTodos はTodo一覧を取得します。
// ownerID が空の場合は自分のTodo (adminの場合は全Todo)、指定された場合はそのユーザーのTodoです。
func (s *TodoService) GetTodos(ctx context.Context, userID, userRole, ownerID string) ([]*models.Todo, error) {
	if ownerID != "" {
		if ownerID != userID && userRole != models.RoleAdmin {
			return nil, repositories.ErrTodoForbidden
		}
		return s.todoRepo.FindByUserID(ctx, ownerID)
	}
	if userRole == models.RoleAdmin {
		return s.todoRepo.FindAll(ctx)
	}
	return s.todoRepo.FindByUserID(ctx, userID)
}

// GetTodoByID は指定IDのTodoを取得し、認可チェックを行います。
func (s *TodoService) GetTodoByID(ctx context.Context, id, userID, userRole string) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo.UserID != userID && userRole != models.RoleAdmin {
		return nil, repositories.ErrTodoForbidden
	}
	return todo, nil
}

// DeleteTodo はTodoを削除し、認可チェックを行います。
func (s *TodoService) DeleteTodo(ctx context.Context, id, userID, userRole string) error {
	if _, err := s.GetTodoByID(ctx, id, userID, userRole); err != nil {
		return err
	}
	return s.todoRepo.Delete(ctx, id)
}
