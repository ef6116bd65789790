/*
 * @module api/controllers/import_controller
 * @description 数据导入控制器，处理CSV批量导入
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 文件上传 -> 导入管道处理 -> 汇总结果返回
 * @rules 仅接受.csv文件，单行错误不中断整批
 * @dependencies inspection-service/service, github.com/go-chi/render
 * @refs service/importer
 */

package controllers

import (
	"net/http"
	"strings"

	"inspection-service/service"
	"inspection-service/service/importer"

	"github.com/go-chi/render"
)

// 上传文件大小上限
const maxImportSize = 64 << 20 // 64MB

// ImportController 数据导入控制器
type ImportController struct {
	service *importer.Service
}

// NewImportController 创建数据导入控制器实例
func NewImportController() *ImportController {
	return &ImportController{service: service.GlobalImportService}
}

// ImportCSV CSV批量导入
// @Summary CSV批量导入
// @Description 上传对象档案或诊断记录CSV文件，按表头自动识别类型，缺陷记录自动风险打标
// @Tags 数据导入
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV文件"
// @Success 200 {object} APIResponse{data=models.ImportResult}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /import/csv [post]
func (c *ImportController) ImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		render.JSON(w, r, BadRequestResponse("上传文件解析失败", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.JSON(w, r, BadRequestResponse("缺少file字段", err))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		render.JSON(w, r, BadRequestResponse("仅支持CSV文件", nil))
		return
	}

	result, err := c.service.ImportCSV(file)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("导入失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("导入完成", result))
}
