/*
 * @module service/auth/token_store
 * @description 会话令牌存储，Redis实现带TTL，未配置Redis时退化为进程内存储
 * @architecture 适配器模式 - 统一令牌存储接口
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 登录签发 -> 请求校验 -> 过期或登出失效
 * @rules 令牌为不透明UUID，存储层只保存token到用户ID的映射
 * @dependencies github.com/go-redis/redis/v8, sync, time
 * @refs auth_service.go
 */

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenStore 会话令牌存储接口
type TokenStore interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, bool)
	Delete(ctx context.Context, token string) error
}

// redis键前缀
const tokenKeyPrefix = "inspection:session:"

// redisTokenStore Redis令牌存储
type redisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore 创建Redis令牌存储
func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKeyPrefix+token, userID, ttl).Err()
}

func (s *redisTokenStore) Get(ctx context.Context, token string) (string, bool) {
	userID, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return "", false
	}
	return userID, true
}

func (s *redisTokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKeyPrefix+token).Err()
}

// memoryEntry 内存令牌条目
type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// memoryTokenStore 进程内令牌存储，单实例部署下的降级方案
type memoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]memoryEntry
}

// NewMemoryTokenStore 创建进程内令牌存储
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{tokens: make(map[string]memoryEntry)}
}

func (s *memoryTokenStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryTokenStore) Get(ctx context.Context, token string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return "", false
	}
	return entry.userID, true
}

func (s *memoryTokenStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
