package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-sample/internal/models"
	"todo-sample/internal/repositories"
	"todo-sample/internal/services"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var in models.CreateTodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	createdTodo, err := h.todoService.CreateTodo(c.Request.Context(), in, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTodoForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot create todo for another user"})
			return
		}
		log.Printf("Failed to create todo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save todo to database"})
		return
	}
	c.JSON(http.StatusCreated, createdTodo)
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	userID, userRole, ok := currentUser(c)
	if !ok {
		return
	}

	err := h.todoService.DeleteTodo(c.Request.Context(), c.Param("id"), userID, userRole)
	if err != nil {
		writeTodoError(c, err, "Failed to delete todo")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTodosHandler はTodoリストを取得します。?userId= で所有者を絞り込めます。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	userID, userRole, ok := currentUser(c)
	if !ok {
		return
	}

	todos, err := h.todoService.GetTodos(c.Request.Context(), userID, userRole, c.Query("userId"))
	if err != nil {
		writeTodoError(c, err, "Failed to fetch todos")
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	userID, userRole, ok := currentUser(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodoByID(c.Request.Context(), c.Param("id"), userID, userRole)
	if err != nil {
		writeTodoError(c, err, "Failed to fetch todo")
		return
	}
	c.JSON(http.StatusOK, todo)
}

func writeTodoError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repositories.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	case errors.Is(err, repositories.ErrTodoForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		log.Printf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
