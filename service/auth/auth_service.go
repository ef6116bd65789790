/*
 * @module service/auth/auth_service
 * @description 认证授权服务，bcrypt口令校验与会话令牌签发，基于角色的访问控制
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 注册 -> 登录签发令牌 -> 请求携带令牌校验 -> 登出失效
 * @rules 口令仅存bcrypt哈希；令牌有效期24小时；禁用账号拒绝登录
 * @dependencies golang.org/x/crypto/bcrypt, github.com/google/uuid, gorm.io/gorm
 * @refs token_store.go, api/middleware/auth.go
 */

package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"inspection-service/service/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 会话令牌有效期
const sessionTTL = 24 * time.Hour

// 常见业务错误
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserDisabled       = errors.New("账号已禁用")
	ErrInvalidToken       = errors.New("会话令牌无效或已过期")
)

// Service 认证服务
type Service struct {
	db     *gorm.DB
	tokens TokenStore
}

// NewService 创建认证服务，REDIS_ADDR配置时使用Redis令牌存储
func NewService(db *gorm.DB) *Service {
	var tokens TokenStore
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		tokens = NewRedisTokenStore(redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		}))
	} else {
		tokens = NewMemoryTokenStore()
	}
	return &Service{db: db, tokens: tokens}
}

// NewServiceWithStore 指定令牌存储创建认证服务
func NewServiceWithStore(db *gorm.DB, tokens TokenStore) *Service {
	return &Service{db: db, tokens: tokens}
}

// Register 注册新用户，缺省角色guest
func (s *Service) Register(username, email, password string, fullName *string) (*models.User, error) {
	if username == "" || email == "" {
		return nil, errors.New("用户名与邮箱不能为空")
	}
	if len(password) < 6 {
		return nil, errors.New("密码长度不能小于6位")
	}

	var existing models.User
	if err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == nil {
		return nil, errors.New("用户名或邮箱已被占用")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("口令哈希失败: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         models.RoleGuest,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login 登录并签发会话令牌
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrUserDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := s.tokens.Put(ctx, token, user.ID, sessionTTL); err != nil {
		return "", nil, fmt.Errorf("会话令牌存储失败: %w", err)
	}
	return token, &user, nil
}

// Verify 校验令牌并返回用户
func (s *Service) Verify(ctx context.Context, token string) (*models.User, error) {
	userID, ok := s.tokens.Get(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}
	return &user, nil
}

// Logout 令牌失效
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Delete(ctx, token)
}

// ChangePassword 修改口令
func (s *Service) ChangePassword(userID, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 6 {
		return errors.New("密码长度不能小于6位")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("口令哈希失败: %w", err)
	}
	return s.db.Model(&user).Update("password_hash", string(hash)).Error
}

// ListUsers 管理端用户列表
func (s *Service) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := s.db.Order("username").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateRole 管理端调整用户角色
func (s *Service) UpdateRole(userID, role string) (*models.User, error) {
	switch role {
	case models.RoleAdmin, models.RoleInspector, models.RoleAnalyst, models.RoleGuest:
	default:
		return nil, fmt.Errorf("无效的角色: %s", role)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&user).Update("role", role).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
