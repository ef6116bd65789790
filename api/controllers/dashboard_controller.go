/*
 * @module api/controllers/dashboard_controller
 * @description 统计看板控制器，提供聚合统计查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 请求接收 -> 缓存/聚合查询 -> 响应返回
 * @rules 统计结果走Redis旁路缓存，缓存失效自动回源
 * @dependencies inspection-service/service, github.com/go-chi/render
 * @refs service/dashboard
 */

package controllers

import (
	"net/http"

	"inspection-service/service"
	"inspection-service/service/dashboard"

	"github.com/go-chi/render"
)

// DashboardController 统计看板控制器
type DashboardController struct {
	service *dashboard.Service
}

// NewDashboardController 创建统计看板控制器实例
func NewDashboardController() *DashboardController {
	return &DashboardController{service: service.GlobalDashboardService}
}

// GetStats 获取看板统计
// @Summary 获取看板统计
// @Description 获取对象/检测/缺陷总量、按方法与风险等级的缺陷分布、年度趋势与高风险Top10
// @Tags 统计看板
// @Produce json
// @Success 200 {object} APIResponse{data=dashboard.Stats}
// @Failure 500 {object} APIResponse
// @Router /dashboard/stats [get]
func (c *DashboardController) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.GetStats(r.Context())
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取看板统计失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取看板统计成功", stats))
}
