// Package client はAPIサーバーと通信するHTTPクライアントです。
// ターミナルクライアントはこのパッケージ経由でTodoの取得・作成・削除と認証を行います。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"todo-sample/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// RemoteServiceError はAPI呼び出しの失敗を表します。
// StatusCode が 0 の場合はサーバーに到達できなかったことを意味します。
type RemoteServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Session はログイン済みユーザーの資格情報です。
type Session struct {
	Token  string
	UserID string
	Email  string
	Role   string
}

// Client はAPIサーバーのベースURLを保持します。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New は新しいClientを作成します。httpClient が nil の場合は http.DefaultClient を使います。
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Login はメールアドレスとパスワードでログインしてセッションを返します。
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var res models.LoginResponse
	body := models.UserLoginRequest{Email: email, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/api/login", "", body, &res); err != nil {
		return nil, err
	}
	return &Session{Token: res.Token, UserID: res.UserID, Email: res.Email, Role: res.Role}, nil
}

// Register はユーザーを登録します。
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := models.UserRegisterRequest{Username: username, Email: email, Password: password}
	return c.do(ctx, "register", http.MethodPost, "/api/register", "", body, nil)
}

// ForgotPassword はパスワードリセットメールの送信を依頼します。
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := models.UserForgotPasswordRequest{Email: email}
	return c.do(ctx, "forgot password", http.MethodPost, "/api/forgot-password", "", body, nil)
}

// Todos はセッションのトークンでTodo APIを呼ぶ TodoAPI を返します。
func (c *Client) Todos(sess *Session) *TodoAPI {
	return &TodoAPI{c: c, token: sess.Token}
}

// TodoAPI は /api/todos を操作します。
type TodoAPI struct {
	c     *Client
	token string
}

// List は userID が所有するTodoをサーバーの返す順序のまま取得します。
func (t *TodoAPI) List(ctx context.Context, userID string) ([]models.Todo, error) {
	todos := []models.Todo{}
	path := "/api/todos?userId=" + url.QueryEscape(userID)
	if err := t.c.do(ctx, "list todos", http.MethodGet, path, t.token, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create はTodoを作成します。
func (t *TodoAPI) Create(ctx context.Context, in models.CreateTodoInput) (*models.Todo, error) {
	var todo models.Todo
	if err := t.c.do(ctx, "create todo", http.MethodPost, "/api/todos", t.token, in, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete はTodoを削除します。
func (t *TodoAPI) Delete(ctx context.Context, id string) error {
	return t.c.do(ctx, "delete todo", http.MethodDelete, "/api/todos/"+url.PathEscape(id), t.token, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &RemoteServiceError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RemoteServiceError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	// ボディが JSON でなくてもステータスだけで判断できる
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	e := &RemoteServiceError{Op: op, StatusCode: resp.StatusCode, Message: payload.Error}
	switch resp.StatusCode {
	case http.StatusNotFound:
		e.Err = ErrNotFound
	case http.StatusUnauthorized:
		e.Err = ErrUnauthorized
	case http.StatusForbidden:
		e.Err = ErrForbidden
	case http.StatusConflict:
		e.Err = ErrConflict
	}
	return e
}
