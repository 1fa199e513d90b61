// Package controller はTodo一覧の取得・作成・削除を取りまとめます。
// 変更操作のあとは必ず一覧全体を取り直し、表示はサーバーが返したスナップショットと一致させます。
package controller

import (
	"context"
	"errors"
	"log"
	"time"

	"todo-sample/internal/client"
	"todo-sample/internal/form"
	"todo-sample/internal/models"
)

// ErrMissingUserID は Config.UserID が空のときのエラーです。
var ErrMissingUserID = errors.New("controller: user id is required")

// DataService はTodoを保存しているリモートサービスです。
type DataService interface {
	List(ctx context.Context, userID string) ([]models.Todo, error)
	Create(ctx context.Context, in models.CreateTodoInput) (*models.Todo, error)
	Delete(ctx context.Context, id string) error
}

// Config はサインイン後に一度だけ作られ、以後変更されません。
type Config struct {
	UserID string
	Logger *log.Logger // nil の場合は log.Default()
}

// Snapshot はある時点でサービスが返したTodo一覧です。
type Snapshot struct {
	Todos     []models.Todo
	FetchedAt time.Time
}

// CreateResult は作成の結果です。
// Created が設定されていれば作成自体は成功しており、フォームをクリアして通知を出します。
type CreateResult struct {
	Created  *models.Todo
	Snapshot *Snapshot
}

// DeleteResult は削除の結果です。削除はエラーを返しません。
type DeleteResult struct {
	Notify   bool
	Snapshot *Snapshot // 取り直しに失敗した場合は nil
}

type Controller struct {
	cfg Config
	svc DataService
	now func() time.Time
}

// New は Controller を作成します。
func New(cfg Config, svc DataService) (*Controller, error) {
	if cfg.UserID == "" {
		return nil, ErrMissingUserID
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Controller{cfg: cfg, svc: svc, now: time.Now}, nil
}

func (c *Controller) UserID() string { return c.cfg.UserID }

// FetchAll はユーザーのTodoをサービスの順序のまま取得します。エラーはそのまま返します。
func (c *Controller) FetchAll(ctx context.Context) (*Snapshot, error) {
	todos, err := c.svc.List(ctx, c.cfg.UserID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Todos: todos, FetchedAt: c.now()}, nil
}

// Create は入力を検証してからTodoを作成し、一覧を取り直します。
// 検証に失敗した場合はリクエストを送らず *form.ValidationError を返します。
// 作成後の取り直しに失敗した場合は Created を設定したままエラーを返します。
func (c *Controller) Create(ctx context.Context, st form.State) (CreateResult, error) {
	if err := form.Validate(st); err != nil {
		return CreateResult{}, err
	}

	created, err := c.svc.Create(ctx, models.CreateTodoInput{
		UserID:      c.cfg.UserID,
		Name:        st.Name,
		Description: st.Description,
	})
	if err != nil {
		return CreateResult{}, err
	}

	snap, err := c.FetchAll(ctx)
	if err != nil {
		return CreateResult{Created: created}, err
	}
	return CreateResult{Created: created, Snapshot: snap}, nil
}

// Delete はTodoを削除し、一覧を取り直します。失敗はログに残すだけで呼び出し元には返しません。
// 存在しないIDの削除もログに残したうえで成功扱いにし、通知を出します。
func (c *Controller) Delete(ctx context.Context, id string) DeleteResult {
	if err := c.svc.Delete(ctx, id); err != nil {
		if !errors.Is(err, client.ErrNotFound) {
			c.cfg.Logger.Printf("Failed to delete todo %s: %v", id, err)
			return DeleteResult{}
		}
		c.cfg.Logger.Printf("Todo %s was already gone: %v", id, err)
	}

	snap, err := c.FetchAll(ctx)
	if err != nil {
		c.cfg.Logger.Printf("Failed to fetch todos after delete: %v", err)
		return DeleteResult{Notify: true}
	}
	return DeleteResult{Notify: true, Snapshot: snap}
}
