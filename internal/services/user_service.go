package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"todo-sample/internal/models"
	"todo-sample/internal/repositories"
)

// ResetTokenTTL はパスワードリセットトークンの有効期間です。
const ResetTokenTTL = time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResetTokenExpired  = errors.New("token expired")
	ErrResetTokenUsed     = errors.New("token already used")
)

// UserService はユーザー関連のビジネスロジックを扱います。
type UserService struct {
	userRepo       *repositories.UserRepository
	resetTokenRepo repositories.ResetTokenRepository
	mailer         Mailer
	frontendURL    string
}

// NewUserService は新しいUserServiceを作成します。
func NewUserService(userRepo *repositories.UserRepository, resetTokenRepo repositories.ResetTokenRepository, mailer Mailer, frontendURL string) *UserService {
	return &UserService{
		userRepo:       userRepo,
		resetTokenRepo: resetTokenRepo,
		mailer:         mailer,
		frontendURL:    strings.TrimRight(frontendURL, "/"),
	}
}

// RegisterUser はユーザーを登録します。
func (s *UserService) RegisterUser(ctx context.Context, req models.UserRegisterRequest) (*models.User, error) {
	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return nil, err
	}

	createdUser, err := s.userRepo.Create(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	createdUser.PasswordHash = "" // レスポンスにパスワードを含めない
	return createdUser, nil
}

// AuthenticateUser はユーザーを認証し、成功したらユーザーを返します。
func (s *UserService) AuthenticateUser(ctx context.Context, req models.UserLoginRequest) (*models.User, error) {
	foundUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := repositories.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	foundUser.PasswordHash = ""
	return foundUser, nil
}

// ForgotPasswordUser はリセットトークンを発行してメールで送ります。
// 存在しないメールアドレスでもエラーにしません。
func (s *UserService) ForgotPasswordUser(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			log.Printf("Password reset requested for unknown email, returning OK")
			return nil
		}
		return err
	}

	if err := s.resetTokenRepo.CleanupExpired(ctx); err != nil {
		log.Printf("Failed to clean up reset tokens: %v", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.resetTokenRepo.Save(ctx, &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordReset(email, resetURL); err != nil {
		// メールサーバーが無くても処理は成功扱い
		log.Printf("Failed to send reset email: %v", err)
	}
	return nil
}

// generateResetToken はパスワードリセット用のランダムトークンを生成します。
func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ResetPasswordUser はトークンを使ってパスワードをリセットします。
func (s *UserService) ResetPasswordUser(ctx context.Context, token, newPassword string) error {
	resetToken, err := s.resetTokenRepo.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if time.Now().After(resetToken.ExpiresAt) {
		return ErrResetTokenExpired
	}
	if resetToken.UsedAt != nil {
		return ErrResetTokenUsed
	}

	hashedPassword, err := repositories.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, resetToken.UserID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetTokenRepo.MarkUsed(ctx, resetToken.ID); err != nil {
		// 失敗しても続行
		log.Printf("Failed to mark token as used: %v", err)
	}
	return nil
}
