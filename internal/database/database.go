package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"todo-sample/internal/config"
)

// Open は設定に従ってデータベース接続を開き、疎通を確認します。
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite は書き込みを直列化する
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// InitDB はデータベース接続を初期化し、スキーマを作成します。失敗した場合は終了します。
func InitDB(cfg config.DatabaseConfig) *sql.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}
	if err := Migrate(context.Background(), db, cfg.Driver); err != nil {
		log.Fatalf("Fatal: Failed to migrate database: %v", err)
	}
	log.Printf("Successfully connected to %s database!", cfg.Driver)
	return db
}
