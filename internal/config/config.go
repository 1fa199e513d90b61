// Package config は環境変数と .env ファイルから設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret は JWT_SECRET が設定されていない場合のエラーです。
var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable not set")

// Config は API サーバーの設定です。起動時に一度だけ作られ、その後は変更しません。
type Config struct {
	Port             string
	Database         DatabaseConfig
	JWTSecret        string
	CORSAllowOrigins []string
	FrontendURL      string
	SMTP             SMTPConfig
}

// DatabaseConfig はデータベース接続の設定です。
type DatabaseConfig struct {
	Driver       string // "mysql" または "sqlite"
	User         string
	Pass         string
	Host         string
	Port         string
	Name         string
	Path         string // sqlite のファイルパス
	MaxOpenConns int
}

// SMTPConfig はパスワードリセットメール送信用の設定です。
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// ClientConfig はターミナルクライアントの設定です。
type ClientConfig struct {
	ServerURL string
	LogFile   string
}

// Load は .env を読み込んでから環境変数で Config を組み立てます。
// .env が無い場合は環境変数だけを使います。
func Load() (*Config, error) {
	loadDotEnv()
	return FromEnv()
}

// FromEnv は現在の環境変数から Config を組み立てます。
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("APP_PORT", "8080"),
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "mysql"),
			User:         os.Getenv("DB_USER"),
			Pass:         os.Getenv("DB_PASS"),
			Host:         getEnv("DB_HOST", "127.0.0.1"),
			Port:         getEnv("DB_PORT", "3306"),
			Name:         os.Getenv("DB_NAME"),
			Path:         getEnv("DB_PATH", "todo.db"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		},
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "sandbox.smtp.mailtrap.io"),
			Port:     getEnv("SMTP_PORT", "2525"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}

// LoadClient はクライアント用の設定を読み込みます。
func LoadClient() ClientConfig {
	loadDotEnv()
	return ClientConfig{
		ServerURL: strings.TrimRight(getEnv("TODO_SERVER_URL", "http://localhost:8080"), "/"),
		LogFile:   getEnv("TODO_LOG_FILE", "todo.log"),
	}
}

// DSN はドライバーに応じた接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	// 例: user:pass@tcp(db:3306)/dbname
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC", d.User, d.Pass, d.Host, d.Port, d.Name)
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
