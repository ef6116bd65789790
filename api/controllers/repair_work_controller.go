/*
 * @module api/controllers/repair_work_controller
 * @description 维修工单控制器，跟踪缺陷处置进度
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 请求接收 -> 业务逻辑处理 -> 响应返回
 * @rules 状态流转planned -> in_progress -> completed|cancelled
 * @dependencies inspection-service/service, github.com/go-chi/render
 * @refs service/inspection
 */

package controllers

import (
	"net/http"

	"inspection-service/service"
	"inspection-service/service/inspection"
	"inspection-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// RepairWorkController 维修工单控制器
type RepairWorkController struct {
	service *inspection.Service
}

// NewRepairWorkController 创建维修工单控制器实例
func NewRepairWorkController() *RepairWorkController {
	return &RepairWorkController{service: service.GlobalInspectionService}
}

// GetRepairWorks 获取维修工单列表
// @Summary 获取维修工单列表
// @Description 分页获取维修工单，支持按状态过滤
// @Tags 维修工单
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Param status query string false "工单状态" Enums(planned,in_progress,completed,cancelled)
// @Success 200 {object} PaginatedResponse{data=[]models.RepairWork}
// @Failure 500 {object} APIResponse
// @Router /repair-works [get]
func (c *RepairWorkController) GetRepairWorks(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	works, total, err := c.service.GetRepairWorks(page, size, r.URL.Query().Get("status"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取维修工单列表失败", err))
		return
	}
	render.JSON(w, r, PageResponse("获取维修工单列表成功", works, total, page, size))
}

// CreateRepairWork 创建维修工单
// @Summary 创建维修工单
// @Description 为指定检测记录创建维修工单
// @Tags 维修工单
// @Accept json
// @Produce json
// @Param work body models.RepairWork true "维修工单"
// @Success 200 {object} APIResponse{data=models.RepairWork}
// @Failure 400 {object} APIResponse
// @Router /repair-works [post]
func (c *RepairWorkController) CreateRepairWork(w http.ResponseWriter, r *http.Request) {
	var work models.RepairWork
	if err := render.DecodeJSON(r.Body, &work); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := c.service.CreateRepairWork(&work); err != nil {
		render.JSON(w, r, InternalErrorResponse("创建维修工单失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建维修工单成功", work))
}

// UpdateStatusRequest 工单状态更新请求
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" example:"in_progress"`
}

// UpdateRepairWorkStatus 更新工单状态
// @Summary 更新工单状态
// @Description 更新维修工单状态，完成时自动补记完成日期
// @Tags 维修工单
// @Accept json
// @Produce json
// @Param id path string true "工单ID"
// @Param request body UpdateStatusRequest true "状态"
// @Success 200 {object} APIResponse{data=models.RepairWork}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /repair-works/{id}/status [put]
func (c *RepairWorkController) UpdateRepairWorkStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	work, err := c.service.UpdateRepairWorkStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("更新工单状态失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("更新工单状态成功", work))
}
