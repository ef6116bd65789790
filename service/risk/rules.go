/*
 * @module service/risk/rules
 * @description 规则风险分类器，基于加权因子表的确定性打分，模型不可用时的兜底引擎
 * @architecture 分层架构 - 风险分类引擎
 * @documentReference dev_docs/risk_engine.md
 * @stateFlow 观测输入 -> 因子逐条评估 -> 加权累积 -> 阈值分档
 * @rules 全函数，永不失败；置信度只反映可用输入数量，下限0.5
 * @dependencies 无外部依赖
 * @refs features.go, classifier.go
 */

package risk

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskNormal RiskLevel = "normal"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Result 一次分类的结果
type Result struct {
	Level      RiskLevel `json:"risk_level"`
	Confidence float64   `json:"confidence"` // [0,1]
}

// 分档阈值与无数据先验，固化设计常量
const (
	thresholdMedium = 0.35
	thresholdHigh   = 0.65
	noFactorScore   = 0.5
	confidenceFloor = 0.5
	maxRuleFactors  = 4.0
	depthScaleMM    = 20.0
	areaScaleMM2    = 300.0
	criticalContrib = 0.1
)

// gradeRiskScores 质量等级对应的风险分值，未知等级取0.5
var gradeRiskScores = map[string]float64{
	GradeSatisfactory:   0.1,
	GradeAcceptable:     0.3,
	GradeRequiresAction: 0.7,
	GradeUnacceptable:   1.0,
}

// ruleFactor 规则因子：条件、权重、分值函数，逐条可审计
type ruleFactor struct {
	name    string
	weight  float64
	applies func(*Observation) bool
	score   func(*Observation) float64
}

// ruleFactors 有序因子表，权重合计1.0
var ruleFactors = []ruleFactor{
	{
		name:    "quality_grade",
		weight:  0.4,
		applies: func(o *Observation) bool { return o.QualityGrade != nil },
		score: func(o *Observation) float64 {
			if s, ok := gradeRiskScores[*o.QualityGrade]; ok {
				return s
			}
			return 0.5
		},
	},
	{
		name:    "defect_depth",
		weight:  0.3,
		applies: func(o *Observation) bool { return o.Param1 != nil },
		score: func(o *Observation) float64 {
			return minFloat(*o.Param1/depthScaleMM, 1.0)
		},
	},
	{
		name:    "defect_area",
		weight:  0.2,
		applies: func(o *Observation) bool { return o.Param2 != nil && o.Param3 != nil },
		score: func(o *Observation) float64 {
			return minFloat((*o.Param2)*(*o.Param3)/areaScaleMM2, 1.0)
		},
	},
	{
		name:    "critical_method",
		weight:  criticalContrib,
		applies: func(o *Observation) bool { return IsCriticalMethod(o.Method) },
		score:   func(o *Observation) float64 { return 1.0 },
	},
}

// ClassifyRules 规则分类入口，确定性全函数
func ClassifyRules(obs *Observation) Result {
	// 无缺陷直接短路
	if !obs.DefectFound {
		return Result{Level: RiskNormal, Confidence: 1.0}
	}

	riskScore := 0.0
	factorCount := 0
	for _, f := range ruleFactors {
		if !f.applies(obs) {
			continue
		}
		riskScore += f.score(obs) * f.weight
		factorCount++
	}

	// 无任何可用因子时取中性先验
	if factorCount == 0 {
		riskScore = noFactorScore
	}

	confidence := clamp(float64(factorCount)/maxRuleFactors, confidenceFloor, 1.0)

	return Result{Level: bandForScore(riskScore), Confidence: confidence}
}

// bandForScore 分值分档，下界归属高档
func bandForScore(score float64) RiskLevel {
	switch {
	case score < thresholdMedium:
		return RiskNormal
	case score < thresholdHigh:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
