/*
 * @module api/middleware/auth
 * @description 会话令牌鉴权中间件，验证Bearer Token的有效性
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow Token提取 -> Token验证 -> 上下文注入 -> 下一个处理器
 * @rules 统一鉴权、白名单路径直接放行、错误处理
 * @dependencies net/http, context, github.com/go-chi/render
 * @refs service/auth/auth_service.go, api/routes.go
 */

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"inspection-service/service/auth"
	"inspection-service/service/models"

	"github.com/go-chi/render"
)

// ContextKey 上下文键类型
type ContextKey string

const (
	// TokenKey Token在上下文中的键
	TokenKey ContextKey = "token"
	// UserKey 用户信息在上下文中的键
	UserKey ContextKey = "user"
)

// SessionAuthMiddleware 会话令牌认证中间件
type SessionAuthMiddleware struct {
	authService *auth.Service
	// 验证结果缓存，减少对令牌存储的访问
	cache      map[string]*cacheEntry
	cacheMutex sync.RWMutex
	cacheTTL   time.Duration
	// 白名单路径（不需要鉴权）
	whitelistPaths []string
}

// cacheEntry 缓存条目
type cacheEntry struct {
	user      *models.User
	expiresAt time.Time
}

// NewSessionAuthMiddleware 创建会话认证中间件实例
func NewSessionAuthMiddleware(authService *auth.Service) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		authService: authService,
		cache:       make(map[string]*cacheEntry),
		cacheTTL:    time.Minute, // 缓存1分钟
		whitelistPaths: []string{
			"/health",  // 健康检查
			"/ready",   // 就绪检查
			"/swagger", // Swagger文档
			"/metrics",       // Prometheus指标
			"/auth/login",    // 登录
			"/auth/register", // 注册
		},
	}
}

// AddWhitelistPath 添加白名单路径
func (m *SessionAuthMiddleware) AddWhitelistPath(path string) {
	m.whitelistPaths = append(m.whitelistPaths, path)
}

// IsWhitelistPath 检查路径是否在白名单中
func (m *SessionAuthMiddleware) IsWhitelistPath(path string) bool {
	for _, whitelistPath := range m.whitelistPaths {
		// 支持前缀匹配
		if strings.HasPrefix(path, whitelistPath) {
			return true
		}
	}
	return false
}

// Middleware 认证中间件处理函数
func (m *SessionAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 检查是否在白名单中
		if m.IsWhitelistPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// 从Authorization头中提取Token
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondUnauthorized(w, r, "缺少Authorization头")
			return
		}

		// 验证Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.respondUnauthorized(w, r, "无效的Authorization格式，需要Bearer Token")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			m.respondUnauthorized(w, r, "Token为空")
			return
		}

		// 先检查缓存
		if user := m.getFromCache(token); user != nil {
			ctx := context.WithValue(r.Context(), TokenKey, token)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// 验证Token
		user, err := m.authService.Verify(r.Context(), token)
		if err != nil {
			m.respondUnauthorized(w, r, fmt.Sprintf("Token验证失败: %v", err))
			return
		}

		// 保存到缓存
		m.saveToCache(token, user)

		// 将Token和用户信息注入到上下文中
		ctx := context.WithValue(r.Context(), TokenKey, token)
		ctx = context.WithValue(ctx, UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getFromCache 从缓存中获取用户信息
func (m *SessionAuthMiddleware) getFromCache(token string) *models.User {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()

	entry, ok := m.cache[token]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.user
}

// saveToCache 保存验证结果到缓存
func (m *SessionAuthMiddleware) saveToCache(token string, user *models.User) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	m.cache[token] = &cacheEntry{
		user:      user,
		expiresAt: time.Now().Add(m.cacheTTL),
	}
}

// InvalidateToken 从缓存中移除令牌，登出时调用
func (m *SessionAuthMiddleware) InvalidateToken(token string) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()
	delete(m.cache, token)
}

// respondUnauthorized 返回401未授权响应
func (m *SessionAuthMiddleware) respondUnauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"status": http.StatusUnauthorized,
		"msg":    msg,
		"data":   nil,
	})
}

// TokenFromContext 从上下文中取出会话令牌
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}

// UserFromContext 从上下文中取出当前用户
func UserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserKey).(*models.User); ok {
		return user
	}
	return nil
}
