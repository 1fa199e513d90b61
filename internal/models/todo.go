// Package modelsはTodoとユーザーを定義します。
package models

import (
	"time"
)

// Todo はユーザーが所有するタスクです。作成後に変更されることはありません。
type Todo struct {
	ID          string    `json:"id"`          // サービスが採番する UUID
	UserID      string    `json:"userId"`      // 所有者 (変更不可)
	Name        string    `json:"name"`        // 名前
	Description string    `json:"description"` // 説明
	CreatedAt   time.Time `json:"createdAt"`   // 作成日時 (一覧の並び順に使用)
}

// CreateTodoInput はTodo作成リクエストです。
// UserID は省略可能ですが、指定する場合はトークンのユーザーと一致する必要があります。
type CreateTodoInput struct {
	UserID      string `json:"userId,omitempty"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}
