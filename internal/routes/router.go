// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"todo-sample/internal/config"
	"todo-sample/internal/handlers"
	"todo-sample/internal/repositories"
	"todo-sample/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sql.DB, cfg *config.Config, mailer services.Mailer) *gin.Engine {
	r := gin.Default()

	// CORS対策
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	// リポジトリ
	todoRepo := repositories.NewTodoRepository(db)
	userRepo := repositories.NewUserRepository(db)
	resetRepo := repositories.NewSQLResetTokenRepo(db)

	// サービス
	todoService := services.NewTodoService(todoRepo)
	userService := services.NewUserService(userRepo, resetRepo, mailer, cfg.FrontendURL)
	jwtService := services.NewJWTService(cfg.JWTSecret)

	// ハンドラー
	userHandler := handlers.NewUserHandler(userService, jwtService)
	todoHandler := handlers.NewTodoHandler(todoService)

	// ルーティング
	r.GET("/api/health", HealthHandler)
	r.GET("/api/dbcheck", DBCheckHandler(db))
	r.POST("/api/register", userHandler.RegisterHandler)
	r.POST("/api/login", userHandler.LoginHandler)
	r.POST("/api/forgot-password", userHandler.ForgotPasswordHandler)
	r.POST("/api/reset-password/:token", userHandler.ResetPasswordHandler)

	authorized := r.Group("/api")
	authorized.Use(AuthMiddleware(jwtService))
	{
		authorized.GET("/todos", todoHandler.GetTodosHandler)
		authorized.GET("/todos/:id", todoHandler.GetTodoByIDHandler)
		authorized.POST("/todos", todoHandler.CreateTodoHandler)
		authorized.DELETE("/todos/:id", todoHandler.DeleteTodoHandler)
		authorized.GET("/me", userHandler.MeHandler)
	}

	return r
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBCheckHandler はデータベース接続の健全性を確認します。
func DBCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database connection failed", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
	}
}
