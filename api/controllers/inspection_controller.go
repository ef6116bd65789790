/*
 * @module api/controllers/inspection_controller
 * @description 检测记录控制器，提供检测记录CRUD、重分类与风险解释查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 请求接收 -> 业务逻辑处理 -> 响应返回
 * @rules 统一的错误处理和响应格式，参数验证
 * @dependencies inspection-service/service, github.com/go-chi/render
 * @refs service/inspection
 */

package controllers

import (
	"net/http"
	"strconv"

	"inspection-service/service"
	"inspection-service/service/inspection"
	"inspection-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// InspectionController 检测记录控制器
type InspectionController struct {
	service *inspection.Service
}

// NewInspectionController 创建检测记录控制器实例
func NewInspectionController() *InspectionController {
	return &InspectionController{service: service.GlobalInspectionService}
}

// parsePagination 解析分页参数
func parsePagination(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}

// diagIDParam 解析路径中的diag_id
func diagIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "diag_id"), 10, 64)
}

// GetInspections 获取检测记录列表
// @Summary 获取检测记录列表
// @Description 分页获取检测记录，支持按方法、日期区间、缺陷、风险等级、管线、对象类型过滤
// @Tags 检测记录
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Param method query string false "检测方法"
// @Param date_from query string false "起始日期"
// @Param date_to query string false "截止日期"
// @Param defect_found query bool false "是否发现缺陷"
// @Param risk_level query string false "风险等级" Enums(normal,medium,high)
// @Param pipeline_id query string false "管线编号"
// @Param object_type query string false "对象类型"
// @Success 200 {object} PaginatedResponse{data=[]models.Inspection}
// @Failure 500 {object} APIResponse
// @Router /inspections [get]
func (c *InspectionController) GetInspections(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)

	filter := &models.InspectionFilter{
		Method:     r.URL.Query().Get("method"),
		DateFrom:   r.URL.Query().Get("date_from"),
		DateTo:     r.URL.Query().Get("date_to"),
		RiskLevel:  r.URL.Query().Get("risk_level"),
		PipelineID: r.URL.Query().Get("pipeline_id"),
		ObjectType: r.URL.Query().Get("object_type"),
	}
	if raw := r.URL.Query().Get("defect_found"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			render.JSON(w, r, BadRequestResponse("defect_found参数非法", err))
			return
		}
		filter.DefectFound = &v
	}

	inspections, total, err := c.service.GetInspections(filter, page, size)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取检测记录列表失败", err))
		return
	}
	render.JSON(w, r, PageResponse("获取检测记录列表成功", inspections, total, page, size))
}

// GetInspection 获取检测记录详情
// @Summary 获取检测记录详情
// @Description 按diag_id获取检测记录及所属检测对象
// @Tags 检测记录
// @Produce json
// @Param diag_id path int true "诊断编号"
// @Success 200 {object} APIResponse{data=models.Inspection}
// @Failure 404 {object} APIResponse
// @Router /inspections/{diag_id} [get]
func (c *InspectionController) GetInspection(w http.ResponseWriter, r *http.Request) {
	diagID, err := diagIDParam(r)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("diag_id参数非法", err))
		return
	}

	insp, err := c.service.GetInspection(diagID)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("检测记录不存在"))
		return
	}
	render.JSON(w, r, SuccessResponse("获取检测记录成功", insp))
}

// CreateInspection 创建检测记录
// @Summary 创建检测记录
// @Description 创建检测记录，发现缺陷时自动完成风险分类打标
// @Tags 检测记录
// @Accept json
// @Produce json
// @Param inspection body models.Inspection true "检测记录"
// @Success 200 {object} APIResponse{data=models.Inspection}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /inspections [post]
func (c *InspectionController) CreateInspection(w http.ResponseWriter, r *http.Request) {
	var insp models.Inspection
	if err := render.DecodeJSON(r.Body, &insp); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	if err := c.service.CreateInspection(&insp); err != nil {
		render.JSON(w, r, InternalErrorResponse("创建检测记录失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建检测记录成功", insp))
}

// Reclassify 重新分类
// @Summary 重新分类
// @Description 对指定检测记录重新执行风险分类并写回标签
// @Tags 检测记录
// @Produce json
// @Param diag_id path int true "诊断编号"
// @Success 200 {object} APIResponse{data=risk.Result}
// @Failure 404 {object} APIResponse
// @Router /inspections/{diag_id}/reclassify [post]
func (c *InspectionController) Reclassify(w http.ResponseWriter, r *http.Request) {
	diagID, err := diagIDParam(r)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("diag_id参数非法", err))
		return
	}

	result, err := c.service.Reclassify(diagID)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("检测记录不存在"))
		return
	}
	render.JSON(w, r, SuccessResponse("重新分类成功", result))
}

// GetExplanation 获取风险解释
// @Summary 获取风险解释
// @Description 获取指定检测记录的风险因素与处置建议
// @Tags 检测记录
// @Produce json
// @Param diag_id path int true "诊断编号"
// @Success 200 {object} APIResponse{data=risk.Explanation}
// @Failure 404 {object} APIResponse
// @Router /inspections/{diag_id}/explanation [get]
func (c *InspectionController) GetExplanation(w http.ResponseWriter, r *http.Request) {
	diagID, err := diagIDParam(r)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("diag_id参数非法", err))
		return
	}

	explanation, err := c.service.Explain(diagID)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("检测记录不存在"))
		return
	}
	render.JSON(w, r, SuccessResponse("获取风险解释成功", explanation))
}

// DeleteInspection 删除检测记录
// @Summary 删除检测记录
// @Description 按diag_id删除检测记录
// @Tags 检测记录
// @Produce json
// @Param diag_id path int true "诊断编号"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /inspections/{diag_id} [delete]
func (c *InspectionController) DeleteInspection(w http.ResponseWriter, r *http.Request) {
	diagID, err := diagIDParam(r)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("diag_id参数非法", err))
		return
	}

	if err := c.service.DeleteInspection(diagID); err != nil {
		render.JSON(w, r, NotFoundResponse("检测记录不存在"))
		return
	}
	render.JSON(w, r, SuccessResponse("删除检测记录成功", nil))
}
