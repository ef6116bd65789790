/*
 * @module api/controllers/auth_controller
 * @description 认证控制器，提供注册、登录、登出、个人信息与用户管理接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 注册 -> 登录签发令牌 -> 携带令牌访问 -> 登出
 * @rules 用户管理接口仅admin角色可用
 * @dependencies inspection-service/service, github.com/go-chi/render
 * @refs service/auth, api/middleware/auth.go
 */

package controllers

import (
	"net/http"

	"inspection-service/api/middleware"
	"inspection-service/service"
	"inspection-service/service/auth"
	"inspection-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// AuthController 认证控制器
type AuthController struct {
	service *auth.Service
}

// NewAuthController 创建认证控制器实例
func NewAuthController() *AuthController {
	return &AuthController{service: service.GlobalAuthService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string  `json:"username" validate:"required" example:"zhangsan"`
	Email    string  `json:"email" validate:"required" example:"zhangsan@example.com"`
	Password string  `json:"password" validate:"required" example:"secret123"`
	FullName *string `json:"full_name,omitempty" example:"张三"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"zhangsan"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 注册新用户，缺省角色guest
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} APIResponse{data=models.User}
// @Failure 400 {object} APIResponse
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	user, err := c.service.Register(req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("注册失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("注册成功", user))
}

// Login 用户登录
// @Summary 用户登录
// @Description 校验用户名口令并签发会话令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} APIResponse{data=LoginResponse}
// @Failure 401 {object} APIResponse
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	token, user, err := c.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		render.JSON(w, r, UnauthorizedResponse("登录失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("登录成功", LoginResponse{Token: token, User: user}))
}

// Logout 用户登出
// @Summary 用户登出
// @Description 使当前会话令牌失效
// @Tags 认证
// @Produce json
// @Success 200 {object} APIResponse
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if token != "" {
		_ = c.service.Logout(r.Context(), token)
	}
	render.JSON(w, r, SuccessResponse("登出成功", nil))
}

// Me 当前用户信息
// @Summary 当前用户信息
// @Description 返回当前登录用户的信息
// @Tags 认证
// @Produce json
// @Success 200 {object} APIResponse{data=models.User}
// @Failure 401 {object} APIResponse
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		render.JSON(w, r, UnauthorizedResponse("未登录", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("获取用户信息成功", user))
}

// ChangePasswordRequest 修改口令请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ChangePassword 修改口令
// @Summary 修改口令
// @Description 校验旧口令后更新为新口令
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "口令信息"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /auth/me/password [put]
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		render.JSON(w, r, UnauthorizedResponse("未登录", nil))
		return
	}

	var req ChangePasswordRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := c.service.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		render.JSON(w, r, BadRequestResponse("修改口令失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("修改口令成功", nil))
}

// ListUsers 用户列表
// @Summary 用户列表
// @Description 管理端分页获取全部用户
// @Tags 认证
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.User}
// @Failure 403 {object} APIResponse
// @Router /auth/users [get]
func (c *AuthController) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, models.RoleAdmin) {
		return
	}
	page, size := parsePagination(r)
	users, total, err := c.service.ListUsers(page, size)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取用户列表失败", err))
		return
	}
	render.JSON(w, r, PageResponse("获取用户列表成功", users, total, page, size))
}

// RoleUpdateRequest 角色调整请求
type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required" example:"inspector"`
}

// UpdateUserRole 调整用户角色
// @Summary 调整用户角色
// @Description 管理端调整指定用户的角色
// @Tags 认证
// @Accept json
// @Produce json
// @Param user_id path string true "用户ID"
// @Param request body RoleUpdateRequest true "目标角色"
// @Success 200 {object} APIResponse{data=models.User}
// @Failure 403 {object} APIResponse
// @Router /auth/users/{user_id}/role [put]
func (c *AuthController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, models.RoleAdmin) {
		return
	}

	var req RoleUpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	user, err := c.service.UpdateRole(chi.URLParam(r, "user_id"), req.Role)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("调整用户角色失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("调整用户角色成功", user))
}

// requireRole 校验当前用户角色，不满足时写入403响应并返回false
func requireRole(w http.ResponseWriter, r *http.Request, role string) bool {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		render.JSON(w, r, UnauthorizedResponse("未登录", nil))
		return false
	}
	if user.Role != role {
		render.JSON(w, r, ForbiddenResponse("无权限执行该操作"))
		return false
	}
	return true
}
