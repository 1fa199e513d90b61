// Package testutil はハンドラーテスト用のデータベースとルーターを用意します。
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"todo-sample/internal/config"
	"todo-sample/internal/database"
	"todo-sample/internal/models"
	"todo-sample/internal/repositories"
	"todo-sample/internal/routes"
)

const (
	TestJWTSecret = "test_very_secret_jwt_key_here"

	NormalUserEmail    = "normal_user@example.com"
	NormalUserPassword = "password123"
	AdminUserEmail     = "admin@example.com"
	AdminUserPassword  = "adminpass"
)

// TestEnv はテスト用に組み立てた依存関係です。
type TestEnv struct {
	DB        *sql.DB
	Router    *gin.Engine
	Config    *config.Config
	TodoRepo  *repositories.TodoRepository
	UserRepo  *repositories.UserRepository
	ResetRepo *repositories.SQLResetTokenRepo
	Mailer    *RecordingMailer

	NormalUser *models.User
	AdminUser  *models.User
}

// RecordingMailer は送信されたリセットURLを記録します。
type RecordingMailer struct {
	mu   sync.Mutex
	Sent map[string]string // 宛先 -> リセットURL
	Err  error
}

func (m *RecordingMailer) SendPasswordReset(to, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Sent == nil {
		m.Sent = make(map[string]string)
	}
	m.Sent[to] = resetURL
	return m.Err
}

// LastURL は宛先に送られた最後のリセットURLを返します。
func (m *RecordingMailer) LastURL(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sent[to]
}

// OpenTestDB はスキーマ作成済みのインメモリ sqlite データベースを開きます。
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, "sqlite"))
	return db
}

// TestConfig はテスト用の設定を返します。
func TestConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Database:         config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		JWTSecret:        TestJWTSecret,
		CORSAllowOrigins: []string{"http://localhost:3000"},
		FrontendURL:      "http://localhost:3000",
	}
}

// SetupTestDB はテスト用のデータベースを作成し、テストユーザーを投入してルーターを返します。
func SetupTestDB(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := OpenTestDB(t)
	env := &TestEnv{
		DB:        db,
		Config:    TestConfig(),
		TodoRepo:  repositories.NewTodoRepository(db),
		UserRepo:  repositories.NewUserRepository(db),
		ResetRepo: repositories.NewSQLResetTokenRepo(db),
		Mailer:    &RecordingMailer{},
	}
	env.NormalUser = CreateTestUser(t, env.UserRepo, "normal_user", NormalUserEmail, NormalUserPassword, models.RoleUser)
	env.AdminUser = CreateTestUser(t, env.UserRepo, "admin_user", AdminUserEmail, AdminUserPassword, models.RoleAdmin)

	env.Router = routes.SetupRouter(db, env.Config, env.Mailer)
	return env
}

func CreateTestUser(t *testing.T, userRepo *repositories.UserRepository, username, email, password, role string) *models.User {
	t.Helper()
	hashedPassword, err := repositories.HashPassword(password)
	require.NoError(t, err)

	createdUser, err := userRepo.Create(context.Background(), &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	})
	require.NoError(t, err)
	require.NotEmpty(t, createdUser.ID)
	return createdUser
}

// CreateTestTodo はAPI経由でTODOを作成します。
func CreateTestTodo(t *testing.T, router *gin.Engine, token, name, description string) *models.Todo {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"name":        name,
		"description": description,
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/todos", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, "TODO作成に失敗しました: %s", resp.Body.String())

	var createdTodo models.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &createdTodo))
	return &createdTodo
}

func LoginAndGetToken(t *testing.T, router *gin.Engine, email, password string) (string, error) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var loginRes models.LoginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &loginRes); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	if loginRes.Token == "" {
		return "", errors.New("token not found in login response")
	}
	return loginRes.Token, nil
}
