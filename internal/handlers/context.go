// Package handlers はHTTPハンドラーを提供します。
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin コンテキストのキー。routes.AuthMiddleware が設定します。
const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
	CtxUserRole  = "user_role"
)

// currentUser は認証済みユーザーのIDとロールを取り出します。
// 取り出せない場合はエラーレスポンスを書き込んで false を返します。
func currentUser(c *gin.Context) (userID, userRole string, ok bool) {
	userIDVal, exists := c.Get(CtxUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return "", "", false
	}
	userID, ok = userIDVal.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID type in context"})
		return "", "", false
	}

	userRoleVal, exists := c.Get(CtxUserRole)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
		return "", "", false
	}
	userRole, ok = userRoleVal.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user role type in context"})
		return "", "", false
	}
	return userID, userRole, true
}
