/*
 * @module service/auth/auth_service_test
 * @description 认证服务单元测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 内存数据库初始化 -> 注册登录 -> 令牌校验 -> 断言
 * @rules 使用内存sqlite与内存令牌存储，禁止依赖外部环境
 * @dependencies testify, testutil
 * @refs auth_service.go, token_store.go
 */

package auth

import (
	"context"
	"testing"
	"time"

	"inspection-service/service/models"
	"inspection-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) *Service {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewServiceWithStore(tdb.DB, NewMemoryTokenStore())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	user, err := svc.Register("zhangsan", "zhangsan@example.com", "secret123", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	token, logged, err := svc.Login(ctx, "zhangsan", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	verified, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Register("", "a@example.com", "secret123", nil)
	assert.Error(t, err)

	_, err = svc.Register("lisi", "lisi@example.com", "123", nil)
	assert.ErrorContains(t, err, "密码长度")

	_, err = svc.Register("lisi", "lisi@example.com", "secret123", nil)
	require.NoError(t, err)

	// 用户名与邮箱唯一
	_, err = svc.Register("lisi", "other@example.com", "secret123", nil)
	assert.ErrorContains(t, err, "已被占用")
	_, err = svc.Register("other", "lisi@example.com", "secret123", nil)
	assert.ErrorContains(t, err, "已被占用")
}

func TestLoginFailures(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	user, err := svc.Register("wangwu", "wangwu@example.com", "secret123", nil)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "wangwu", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// 禁用账号拒绝登录
	require.NoError(t, svc.db.Model(user).Update("is_active", false).Error)
	_, _, err = svc.Login(ctx, "wangwu", "secret123")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register("zhaoliu", "zhaoliu@example.com", "secret123", nil)
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "zhaoliu", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	user, err := svc.Register("qianqi", "qianqi@example.com", "secret123", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "wrong", "newsecret"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(user.ID, "secret123", "newsecret"))

	_, _, err = svc.Login(ctx, "qianqi", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "qianqi", "newsecret")
	assert.NoError(t, err)
}

func TestUpdateRole(t *testing.T) {
	svc := newTestAuth(t)

	user, err := svc.Register("sunba", "sunba@example.com", "secret123", nil)
	require.NoError(t, err)

	_, err = svc.UpdateRole(user.ID, "superuser")
	assert.ErrorContains(t, err, "无效的角色")

	updated, err := svc.UpdateRole(user.ID, models.RoleInspector)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInspector, updated.Role)
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok", "user-1", 10*time.Millisecond))
	userID, ok := store.Get(ctx, "tok")
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	time.Sleep(20 * time.Millisecond)
	_, ok = store.Get(ctx, "tok")
	assert.False(t, ok)
}
