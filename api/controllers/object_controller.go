/*
 * @module api/controllers/object_controller
 * @description 管线与检测对象控制器，提供管线和对象的CRUD
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 请求接收 -> 业务逻辑处理 -> 响应返回
 * @rules 统一的错误处理和响应格式，参数验证
 * @dependencies inspection-service/service, github.com/go-chi/render
 * @refs service/pipeline
 */

package controllers

import (
	"net/http"
	"strconv"

	"inspection-service/service"
	"inspection-service/service/models"
	"inspection-service/service/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ObjectController 管线与检测对象控制器
type ObjectController struct {
	service *pipeline.Service
}

// NewObjectController 创建管线与检测对象控制器实例
func NewObjectController() *ObjectController {
	return &ObjectController{service: service.GlobalPipelineService}
}

// GetPipelines 获取管线列表
// @Summary 获取管线列表
// @Description 分页获取管线列表
// @Tags 管线对象
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.Pipeline}
// @Failure 500 {object} APIResponse
// @Router /pipelines [get]
func (c *ObjectController) GetPipelines(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	pipelines, total, err := c.service.GetPipelines(page, size)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取管线列表失败", err))
		return
	}
	render.JSON(w, r, PageResponse("获取管线列表成功", pipelines, total, page, size))
}

// CreatePipeline 创建管线
// @Summary 创建管线
// @Description 创建管线档案
// @Tags 管线对象
// @Accept json
// @Produce json
// @Param pipeline body models.Pipeline true "管线信息"
// @Success 200 {object} APIResponse{data=models.Pipeline}
// @Failure 400 {object} APIResponse
// @Router /pipelines [post]
func (c *ObjectController) CreatePipeline(w http.ResponseWriter, r *http.Request) {
	var p models.Pipeline
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := c.service.CreatePipeline(&p); err != nil {
		render.JSON(w, r, InternalErrorResponse("创建管线失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建管线成功", p))
}

// GetObjects 获取检测对象列表
// @Summary 获取检测对象列表
// @Description 分页获取检测对象，支持按管线和类型过滤
// @Tags 管线对象
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Param pipeline_id query string false "管线编号"
// @Param object_type query string false "对象类型" Enums(crane,compressor,pipeline_section)
// @Success 200 {object} PaginatedResponse{data=[]models.PipelineObject}
// @Failure 500 {object} APIResponse
// @Router /objects [get]
func (c *ObjectController) GetObjects(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	objects, total, err := c.service.GetObjects(page, size,
		r.URL.Query().Get("pipeline_id"), r.URL.Query().Get("object_type"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取检测对象列表失败", err))
		return
	}
	render.JSON(w, r, PageResponse("获取检测对象列表成功", objects, total, page, size))
}

// objectIDParam 解析路径中的object_id
func objectIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "object_id"), 10, 64)
}

// GetObject 获取检测对象详情
// @Summary 获取检测对象详情
// @Description 按object_id获取检测对象及其全部检测记录
// @Tags 管线对象
// @Produce json
// @Param object_id path int true "对象编号"
// @Success 200 {object} APIResponse{data=models.PipelineObject}
// @Failure 404 {object} APIResponse
// @Router /objects/{object_id} [get]
func (c *ObjectController) GetObject(w http.ResponseWriter, r *http.Request) {
	objectID, err := objectIDParam(r)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("object_id参数非法", err))
		return
	}

	obj, err := c.service.GetObjectWithInspections(objectID)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("检测对象不存在"))
		return
	}
	render.JSON(w, r, SuccessResponse("获取检测对象成功", obj))
}

// CreateObject 创建检测对象
// @Summary 创建检测对象
// @Description 创建检测对象档案
// @Tags 管线对象
// @Accept json
// @Produce json
// @Param object body models.PipelineObject true "检测对象信息"
// @Success 200 {object} APIResponse{data=models.PipelineObject}
// @Failure 400 {object} APIResponse
// @Router /objects [post]
func (c *ObjectController) CreateObject(w http.ResponseWriter, r *http.Request) {
	var obj models.PipelineObject
	if err := render.DecodeJSON(r.Body, &obj); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := c.service.CreateObject(&obj); err != nil {
		render.JSON(w, r, InternalErrorResponse("创建检测对象失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建检测对象成功", obj))
}

// DeleteObject 删除检测对象
// @Summary 删除检测对象
// @Description 按object_id删除检测对象
// @Tags 管线对象
// @Produce json
// @Param object_id path int true "对象编号"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /objects/{object_id} [delete]
func (c *ObjectController) DeleteObject(w http.ResponseWriter, r *http.Request) {
	objectID, err := objectIDParam(r)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("object_id参数非法", err))
		return
	}
	if err := c.service.DeleteObject(objectID); err != nil {
		render.JSON(w, r, NotFoundResponse("检测对象不存在"))
		return
	}
	render.JSON(w, r, SuccessResponse("删除检测对象成功", nil))
}
