/*
 * @module service/risk/explain
 * @description 风险解释构建器，基于原始观测重新推导风险因素与处置建议
 * @architecture 分层架构 - 风险分类引擎
 * @documentReference dev_docs/risk_engine.md
 * @stateFlow 门面分类取得权威结论 -> 逐项复核观测字段 -> 因素与建议列表
 * @rules 解释与Classify在同一观测上的风险等级必须一致
 * @dependencies math
 * @refs classifier.go
 */

package risk

import "math"

// Explanation 风险解释，供报表与前端展示
type Explanation struct {
	RiskLevel         RiskLevel `json:"risk_level"`
	ConfidencePercent float64   `json:"confidence_percent"`
	ConfidenceText    string    `json:"confidence_text"` // low/medium/high
	Factors           []string  `json:"factors"`
	Recommendations   []string  `json:"recommendations"`
}

// 解释侧复核阈值
const (
	depthSevereMM   = 10.0
	depthNotableMM  = 5.0
	areaSevereMM2   = 200.0
	areaNotableMM2  = 50.0
	tempLowBoundC   = 5.0
	tempHighBoundC  = 35.0
	humidityHighPct = 80.0
)

// gradeFactorTexts 质量等级对应的因素描述
var gradeFactorTexts = map[string]string{
	GradeSatisfactory:   "质量等级为合格",
	GradeAcceptable:     "质量等级为允许",
	GradeRequiresAction: "质量等级为需采取措施",
	GradeUnacceptable:   "质量等级为不合格",
}

// Explain 解释入口，先经门面取得权威风险等级，再独立推导因素与建议
func (c *Classifier) Explain(obs *Observation) Explanation {
	result := c.Classify(obs)

	factors, recommendations := deriveFactors(obs)
	if len(recommendations) == 0 {
		recommendations = defaultRecommendations(result.Level)
	}

	return Explanation{
		RiskLevel:         result.Level,
		ConfidencePercent: math.Round(result.Confidence*1000) / 10,
		ConfidenceText:    confidenceText(result.Confidence),
		Factors:           factors,
		Recommendations:   recommendations,
	}
}

// deriveFactors 逐项复核观测字段，产出因素列表与针对性建议
func deriveFactors(obs *Observation) (factors, recommendations []string) {
	factors = []string{}
	recommendations = []string{}

	if !obs.DefectFound {
		factors = append(factors, "未发现缺陷")
		return factors, recommendations
	}
	factors = append(factors, "检测发现缺陷")

	if obs.QualityGrade != nil {
		if text, ok := gradeFactorTexts[*obs.QualityGrade]; ok {
			factors = append(factors, text)
		}
		if *obs.QualityGrade == GradeUnacceptable {
			recommendations = append(recommendations, "质量等级不合格, 建议立即停用并安排维修")
		}
	}

	if obs.Param1 != nil {
		switch {
		case *obs.Param1 > depthSevereMM:
			factors = append(factors, "缺陷深度超过10mm, 属重度缺陷")
			recommendations = append(recommendations, "建议优先安排开挖复检")
		case *obs.Param1 > depthNotableMM:
			factors = append(factors, "缺陷深度超过5mm, 需要关注")
		}
	}

	if obs.Param2 != nil && obs.Param3 != nil {
		area := (*obs.Param2) * (*obs.Param3)
		switch {
		case area > areaSevereMM2:
			factors = append(factors, "缺陷面积超过200mm², 属大面积缺陷")
			recommendations = append(recommendations, "建议扩大检测范围, 确认缺陷边界")
		case area > areaNotableMM2:
			factors = append(factors, "缺陷面积超过50mm²")
		}
	}

	if IsCriticalMethod(obs.Method) {
		factors = append(factors, "采用高灵敏度检测方法, 检出结果可信度较高")
	}

	if obs.Temperature != nil && (*obs.Temperature < tempLowBoundC || *obs.Temperature > tempHighBoundC) {
		factors = append(factors, "检测时环境温度超出5~35°C常规范围")
	}

	if obs.Humidity != nil && *obs.Humidity > humidityHighPct {
		factors = append(factors, "检测时环境湿度超过80%")
		recommendations = append(recommendations, "高湿环境, 建议复核防腐层状态")
	}

	return factors, recommendations
}

// defaultRecommendations 无针对性建议时按最终风险等级给出缺省建议
func defaultRecommendations(level RiskLevel) []string {
	switch level {
	case RiskHigh:
		return []string{"建议重新诊断确认缺陷", "建议制定维修方案"}
	case RiskMedium:
		return []string{"建议持续监测缺陷发展", "建议纳入计划性维护"}
	default:
		return []string{"建议保持例行巡检"}
	}
}

// confidenceText 置信度文字分档
func confidenceText(confidence float64) string {
	switch {
	case confidence > 0.8:
		return "high"
	case confidence > 0.6:
		return "medium"
	default:
		return "low"
	}
}
