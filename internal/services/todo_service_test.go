package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sample/internal/models"
	"todo-sample/internal/repositories"
	"todo-sample/internal/services"
	"todo-sample/testutil"
)

func TestTodoService_Ownership(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := repositories.NewUserRepository(db)
	svc := services.NewTodoService(repositories.NewTodoRepository(db))
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, users, "alice", "alice@example.com", "password123", models.RoleUser)
	bob := testutil.CreateTestUser(t, users, "bob", "bob@example.com", "password123", models.RoleUser)
	admin := testutil.CreateTestUser(t, users, "admin", "root@example.com", "password123", models.RoleAdmin)

	_, err := svc.CreateTodo(ctx, models.CreateTodoInput{UserID: bob.ID, Name: "n", Description: "d"}, alice.ID)
	assert.ErrorIs(t, err, repositories.ErrTodoForbidden)

	todo, err := svc.CreateTodo(ctx, models.CreateTodoInput{Name: "n", Description: "d"}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, todo.UserID)

	_, err = svc.GetTodoByID(ctx, todo.ID, bob.ID, models.RoleUser)
	assert.ErrorIs(t, err, repositories.ErrTodoForbidden)
	assert.ErrorIs(t, svc.DeleteTodo(ctx, todo.ID, bob.ID, models.RoleUser), repositories.ErrTodoForbidden)

	_, err = svc.GetTodos(ctx, bob.ID, models.RoleUser, alice.ID)
	assert.ErrorIs(t, err, repositories.ErrTodoForbidden)

	list, err := svc.GetTodos(ctx, admin.ID, models.RoleAdmin, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteTodo(ctx, todo.ID, admin.ID, models.RoleAdmin))
	assert.ErrorIs(t, svc.DeleteTodo(ctx, todo.ID, alice.ID, models.RoleUser), repositories.ErrTodoNotFound)
}
