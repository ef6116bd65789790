/*
 * @module service/risk/rules_test
 * @description 规则风险分类器测试，覆盖短路、因子加权、阈值分档与边界取值
 * @architecture 测试层
 * @documentReference dev_docs/risk_engine.md
 * @stateFlow 构造观测 -> 规则分类 -> 断言等级与置信度
 * @rules 不依赖数据库与模型文件
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs rules.go
 */

package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

// 无缺陷观测必须精确返回 (normal, 1.0)
func TestClassifyRulesNoDefect(t *testing.T) {
	cases := []Observation{
		{DefectFound: false},
		{DefectFound: false, QualityGrade: strPtr(GradeUnacceptable), Param1: floatPtr(25)},
		{DefectFound: false, Method: "UZK"},
	}
	for _, obs := range cases {
		result := ClassifyRules(&obs)
		assert.Equal(t, RiskNormal, result.Level)
		assert.Equal(t, 1.0, result.Confidence)
	}
}

// 四因子齐备的严重缺陷：风险分值1.0，置信度1.0
func TestClassifyRulesAllFactorsHigh(t *testing.T) {
	obs := &Observation{
		DefectFound:  true,
		QualityGrade: strPtr(GradeUnacceptable),
		Param1:       floatPtr(25),
		Param2:       floatPtr(100),
		Param3:       floatPtr(50),
		Method:       "UZK",
	}
	result := ClassifyRules(obs)
	assert.Equal(t, RiskHigh, result.Level)
	assert.Equal(t, 1.0, result.Confidence)
}

// 仅defect_found为真、无任何其他字段：中性先验0.5 -> medium，置信度下限0.5
func TestClassifyRulesNoFactors(t *testing.T) {
	obs := &Observation{DefectFound: true}
	result := ClassifyRules(obs)
	assert.Equal(t, RiskMedium, result.Level)
	assert.Equal(t, 0.5, result.Confidence)
}

// 仅深度3mm：0.3*0.15=0.045 -> normal
func TestClassifyRulesShallowDepthOnly(t *testing.T) {
	obs := &Observation{DefectFound: true, Param1: floatPtr(3)}
	result := ClassifyRules(obs)
	assert.Equal(t, RiskNormal, result.Level)
	assert.Equal(t, 0.5, result.Confidence)
}

// 分档下界归属高档：0.35 -> medium，0.65 -> high
func TestClassifyRulesBandBoundaries(t *testing.T) {
	assert.Equal(t, RiskMedium, bandForScore(0.35))
	assert.Equal(t, RiskHigh, bandForScore(0.65))
	assert.Equal(t, RiskNormal, bandForScore(0.3499999))
	assert.Equal(t, RiskMedium, bandForScore(0.6499999))
}

// 质量等级因子单独作用的分档
func TestClassifyRulesGradeFactor(t *testing.T) {
	cases := []struct {
		grade string
		level RiskLevel
	}{
		{GradeSatisfactory, RiskNormal},   // 0.4*0.1=0.04
		{GradeAcceptable, RiskNormal},     // 0.4*0.3=0.12
		{GradeRequiresAction, RiskNormal}, // 0.4*0.7=0.28
		{GradeUnacceptable, RiskMedium},   // 0.4*1.0=0.40
	}
	for _, tc := range cases {
		obs := &Observation{DefectFound: true, QualityGrade: strPtr(tc.grade)}
		result := ClassifyRules(obs)
		assert.Equal(t, tc.level, result.Level, "grade=%s", tc.grade)
		assert.Equal(t, 0.5, result.Confidence)
	}
}

// 未知质量等级取0.5分值：0.4*0.5=0.2 -> normal
func TestClassifyRulesUnknownGrade(t *testing.T) {
	obs := &Observation{DefectFound: true, QualityGrade: strPtr("somewhat_bad")}
	result := ClassifyRules(obs)
	assert.Equal(t, RiskNormal, result.Level)
}

// 未知检测方法按非高灵敏度处理，不计因子
func TestClassifyRulesUnknownMethod(t *testing.T) {
	obs := &Observation{DefectFound: true, Method: "XYZ"}
	result := ClassifyRules(obs)
	assert.Equal(t, RiskMedium, result.Level) // 无因子 -> 中性先验
	assert.Equal(t, 0.5, result.Confidence)
}

// 深度与面积因子封顶为1.0
func TestClassifyRulesFactorCaps(t *testing.T) {
	obs := &Observation{
		DefectFound: true,
		Param1:      floatPtr(1000),
		Param2:      floatPtr(1000),
		Param3:      floatPtr(1000),
	}
	result := ClassifyRules(obs)
	// 0.3*1.0 + 0.2*1.0 = 0.5 -> medium
	assert.Equal(t, RiskMedium, result.Level)
}

// 面积因子要求param2与param3同时存在
func TestClassifyRulesAreaRequiresBothParams(t *testing.T) {
	obs := &Observation{DefectFound: true, Param2: floatPtr(100)}
	result := ClassifyRules(obs)
	// 无任何因子生效
	assert.Equal(t, RiskMedium, result.Level)
	assert.Equal(t, 0.5, result.Confidence)
}

// 置信度始终落在[0.5, 1.0]且随可用因子数递增
func TestClassifyRulesConfidenceBounds(t *testing.T) {
	observations := []*Observation{
		{DefectFound: true},
		{DefectFound: true, Param1: floatPtr(5)},
		{DefectFound: true, Param1: floatPtr(5), QualityGrade: strPtr(GradeAcceptable)},
		{DefectFound: true, Param1: floatPtr(5), QualityGrade: strPtr(GradeAcceptable), Method: "MFL"},
		{DefectFound: true, Param1: floatPtr(5), Param2: floatPtr(10), Param3: floatPtr(5),
			QualityGrade: strPtr(GradeAcceptable), Method: "MFL"},
	}
	expected := []float64{0.5, 0.5, 0.5, 0.75, 1.0}
	for i, obs := range observations {
		result := ClassifyRules(obs)
		assert.GreaterOrEqual(t, result.Confidence, 0.5)
		assert.LessOrEqual(t, result.Confidence, 1.0)
		assert.Equal(t, expected[i], result.Confidence)
	}
}

// 单调性：仅提高param1不会降低风险分档
func TestClassifyRulesDepthMonotonic(t *testing.T) {
	bandRank := map[RiskLevel]int{RiskNormal: 0, RiskMedium: 1, RiskHigh: 2}
	prev := -1
	for depth := 0.0; depth <= 40.0; depth += 0.5 {
		obs := &Observation{DefectFound: true, Param1: floatPtr(depth)}
		rank := bandRank[ClassifyRules(obs).Level]
		assert.GreaterOrEqual(t, rank, prev, "depth=%v", depth)
		prev = rank
	}
}
