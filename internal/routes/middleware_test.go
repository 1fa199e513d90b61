package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sample/testutil"
)

func serve(t *testing.T, env *testutil.TestEnv, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	env := testutil.SetupTestDB(t)

	token, err := testutil.LoginAndGetToken(t, env.Router, testutil.NormalUserEmail, testutil.NormalUserPassword)
	require.NoError(t, err)

	w := serve(t, env, "/api/me", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, env.NormalUser.ID, response["user_id"])
	assert.Equal(t, testutil.NormalUserEmail, response["email"])
	assert.Equal(t, "user", response["role"])
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	env := testutil.SetupTestDB(t)

	w := serve(t, env, "/api/me", "Bearer invalid.jwt.token") // 不正なトークン

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "Invalid or expired token")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	env := testutil.SetupTestDB(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": env.AdminUser.ID,
		"email":   testutil.AdminUserEmail,
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := forged.SignedString([]byte("not-the-server-secret"))
	require.NoError(t, err)

	w := serve(t, env, "/api/todos", "Bearer "+tokenString)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MissingBearerPrefix(t *testing.T) {
	env := testutil.SetupTestDB(t)

	token, err := testutil.LoginAndGetToken(t, env.Router, testutil.NormalUserEmail, testutil.NormalUserPassword)
	require.NoError(t, err)

	w := serve(t, env, "/api/me", token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid token format", response["error"])
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	env := testutil.SetupTestDB(t)

	w := serve(t, env, "/api/me", "") // トークンなし

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "Authorization header required")
}

func TestHealthAndDBCheck(t *testing.T) {
	env := testutil.SetupTestDB(t)

	w := serve(t, env, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(t, env, "/api/dbcheck", "")
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.DB.Close())
	w = serve(t, env, "/api/dbcheck", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	env := testutil.SetupTestDB(t)

	req, _ := http.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
