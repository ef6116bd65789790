/*
 * @module service/risk/features
 * @description 缺陷特征工程，将原始检测观测转换为固定顺序的数值特征向量
 * @architecture 分层架构 - 风险分类引擎
 * @documentReference dev_docs/risk_engine.md
 * @stateFlow 观测输入 -> 缺省值替换 -> 特征计算 -> 特征向量输出
 * @rules 纯函数，任何缺失字段用缺省值表替换，特征顺序与训练侧保持一致
 * @dependencies 无外部依赖
 * @refs rules.go, model.go
 */

package risk

// Observation 一条待评估的缺陷检测观测，由调用方提供，本包不做修改
type Observation struct {
	DefectFound  bool     `json:"defect_found"`
	QualityGrade *string  `json:"quality_grade,omitempty"` // satisfactory/acceptable/requires_action/unacceptable
	Method       string   `json:"method,omitempty"`
	Param1       *float64 `json:"param1,omitempty"` // 缺陷深度（mm）
	Param2       *float64 `json:"param2,omitempty"` // 缺陷长度（mm）
	Param3       *float64 `json:"param3,omitempty"` // 缺陷宽度（mm）
	Temperature  *float64 `json:"temperature,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
}

// FeatureVector 固定顺序的11维特征向量，顺序见FeatureNames
type FeatureVector [FeatureCount]float64

// FeatureCount 特征维数
const FeatureCount = 11

// FeatureNames 特征名称，顺序与训练侧特征工程严格一致
var FeatureNames = []string{
	"quality_score",
	"defect_depth",
	"defect_length",
	"defect_width",
	"defect_area",
	"is_critical_method",
	"temperature",
	"temperature_norm",
	"humidity",
	"humidity_norm",
	"depth_to_area_ratio",
}

// Defaults 缺失字段的缺省值表，进程生命周期内不变
type Defaults struct {
	Temperature float64
	Humidity    float64
	Param1      float64
	Param2      float64
	Param3      float64
}

// DefaultDefaults 返回标准缺省值表
func DefaultDefaults() Defaults {
	return Defaults{
		Temperature: 20.0,
		Humidity:    50.0,
		Param1:      5.0,
		Param2:      10.0,
		Param3:      5.0,
	}
}

// 环境参考常量，固化设计值，不随数据重算
const (
	temperatureMean   = 20.0
	temperatureStddev = 10.0
	humidityMean      = 50.0
	humidityStddev    = 20.0
)

// 质量等级取值
const (
	GradeSatisfactory   = "satisfactory"
	GradeAcceptable     = "acceptable"
	GradeRequiresAction = "requires_action"
	GradeUnacceptable   = "unacceptable"
)

// criticalMethods 高灵敏度检测方法集合，命中则基线风险上调
var criticalMethods = map[string]bool{
	"UZK":  true,
	"RGK":  true,
	"MFL":  true,
	"UTWM": true,
}

// IsCriticalMethod 判断检测方法是否属于高灵敏度方法
func IsCriticalMethod(method string) bool {
	return criticalMethods[method]
}

// qualityScore 质量等级映射为1-4分值，缺失或未知等级取2
func qualityScore(grade *string) float64 {
	if grade == nil {
		return 2
	}
	switch *grade {
	case GradeSatisfactory:
		return 1
	case GradeAcceptable:
		return 2
	case GradeRequiresAction:
		return 3
	case GradeUnacceptable:
		return 4
	default:
		return 2
	}
}

// valueOr 取观测值，缺失时取缺省值
func valueOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// Engineer 特征工程入口，永不失败
func Engineer(obs *Observation, defaults Defaults) FeatureVector {
	depth := valueOr(obs.Param1, defaults.Param1)
	length := valueOr(obs.Param2, defaults.Param2)
	width := valueOr(obs.Param3, defaults.Param3)
	area := length * width

	critical := 0.0
	if IsCriticalMethod(obs.Method) {
		critical = 1.0
	}

	temperature := valueOr(obs.Temperature, defaults.Temperature)
	humidity := valueOr(obs.Humidity, defaults.Humidity)

	return FeatureVector{
		qualityScore(obs.QualityGrade),
		depth,
		length,
		width,
		area,
		critical,
		temperature,
		(temperature - temperatureMean) / temperatureStddev,
		humidity,
		(humidity - humidityMean) / humidityStddev,
		// +1为设计常量，避免面积为零时除零
		depth / (area + 1),
	}
}
