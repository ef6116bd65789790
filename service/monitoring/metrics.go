/*
 * @module service/monitoring/metrics
 * @description Prometheus指标采集，覆盖风险分类、模型回退与数据导入
 * @architecture 分层架构 - 监控服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 指标注册 -> 业务埋点 -> /metrics 暴露
 * @rules 指标只增不减，标签基数受控（engine与risk_level均为有限枚举）
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs service/risk, service/importer, main.go
 */

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// classificationTotal 按引擎与风险等级统计的分类次数
	classificationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "risk",
		Name:      "classification_total",
		Help:      "风险分类次数, 按分类引擎与风险等级区分",
	}, []string{"engine", "risk_level"})

	// modelFallbackTotal 模型推理失败回退规则引擎的次数
	modelFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "risk",
		Name:      "model_fallback_total",
		Help:      "模型推理失败回退规则分类器的次数",
	})

	// importRowsTotal CSV导入行数，按结果区分
	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "CSV导入处理行数, 按结果(imported/skipped/failed)区分",
	}, []string{"result"})

	// highRiskAlertsTotal 已发布的高风险告警数
	highRiskAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "alert",
		Name:      "high_risk_total",
		Help:      "已发布的高风险缺陷告警数",
	})
)

// RecordClassification 记录一次风险分类
func RecordClassification(engine, riskLevel string) {
	classificationTotal.WithLabelValues(engine, riskLevel).Inc()
}

// RecordModelFallback 记录一次模型回退
func RecordModelFallback() {
	modelFallbackTotal.Inc()
}

// RecordImportRow 记录一行导入结果
func RecordImportRow(result string) {
	importRowsTotal.WithLabelValues(result).Inc()
}

// RecordHighRiskAlert 记录一次高风险告警发布
func RecordHighRiskAlert() {
	highRiskAlertsTotal.Inc()
}
