/*
 * @module service/models/user
 * @description 用户模型定义，支持基于角色的访问控制
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 注册 -> 登录 -> 会话令牌签发 -> 角色校验
 * @rules 密码仅存bcrypt哈希，角色取值admin/inspector/analyst/guest
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/auth
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 用户角色
const (
	RoleAdmin     = "admin"
	RoleInspector = "inspector"
	RoleAnalyst   = "analyst"
	RoleGuest     = "guest"
)

// User 用户模型
type User struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	Username     string    `gorm:"not null;uniqueIndex;size:100" json:"username"`
	Email        string    `gorm:"not null;uniqueIndex;size:200" json:"email"`
	FullName     *string   `gorm:"size:200" json:"full_name"`
	PasswordHash string    `gorm:"not null;size:200" json:"-"`
	Role         string    `gorm:"not null;default:'guest';size:20" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate 创建前钩子
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleGuest
	}
	return nil
}
