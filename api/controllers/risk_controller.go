/*
 * @module api/controllers/risk_controller
 * @description 风险分类控制器，提供在线分类、风险解释与模型状态查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/risk_engine.md
 * @stateFlow 请求接收 -> 观测解析 -> 分类引擎调用 -> 响应返回
 * @rules 分类与解释接口不落库，仅做在线评估
 * @dependencies inspection-service/service, github.com/go-chi/render
 * @refs service/risk
 */

package controllers

import (
	"net/http"

	"inspection-service/service"
	"inspection-service/service/risk"

	"github.com/go-chi/render"
)

// RiskController 风险分类控制器
type RiskController struct {
	classifier *risk.Classifier
}

// NewRiskController 创建风险分类控制器实例
func NewRiskController() *RiskController {
	return &RiskController{classifier: service.GlobalClassifier}
}

// Classify 在线风险分类
// @Summary 在线风险分类
// @Description 对一条检测观测做风险分类，不落库
// @Tags 风险分类
// @Accept json
// @Produce json
// @Param observation body risk.Observation true "检测观测"
// @Success 200 {object} APIResponse{data=risk.Result}
// @Failure 400 {object} APIResponse
// @Router /risk/classify [post]
func (c *RiskController) Classify(w http.ResponseWriter, r *http.Request) {
	var obs risk.Observation
	if err := render.DecodeJSON(r.Body, &obs); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	result := c.classifier.Classify(&obs)
	render.JSON(w, r, SuccessResponse("风险分类成功", result))
}

// Explain 风险解释
// @Summary 风险解释
// @Description 对一条检测观测生成风险因素与处置建议
// @Tags 风险分类
// @Accept json
// @Produce json
// @Param observation body risk.Observation true "检测观测"
// @Success 200 {object} APIResponse{data=risk.Explanation}
// @Failure 400 {object} APIResponse
// @Router /risk/explain [post]
func (c *RiskController) Explain(w http.ResponseWriter, r *http.Request) {
	var obs risk.Observation
	if err := render.DecodeJSON(r.Body, &obs); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	explanation := c.classifier.Explain(&obs)
	render.JSON(w, r, SuccessResponse("风险解释生成成功", explanation))
}

// ModelStatus 模型状态查询
// @Summary 模型状态查询
// @Description 查询当前模型导出件的加载状态与元数据
// @Tags 风险分类
// @Produce json
// @Success 200 {object} APIResponse{data=risk.ModelStatus}
// @Router /risk/model [get]
func (c *RiskController) ModelStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取模型状态成功", c.classifier.Status()))
}
