/*
 * @module service/notification/alert_publisher
 * @description 高风险缺陷告警发布器，将高风险分类结果推送到Kafka供下游预警系统消费
 * @architecture 适配器模式 - 封装kafka-go生产者
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 分类产出高风险结论 -> 告警消息构造 -> 异步发布 -> 失败仅记日志
 * @rules 告警为尽力而为，发布失败不回传业务层；未配置broker时整体禁用
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/inspection, service/monitoring
 */

package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"inspection-service/service/models"
	"inspection-service/service/monitoring"
	"inspection-service/service/risk"

	"github.com/segmentio/kafka-go"
)

// 告警主题
const defaultAlertTopic = "inspection.high-risk-alerts"

// HighRiskAlert 高风险告警消息体
type HighRiskAlert struct {
	DiagID       int64     `json:"diag_id"`
	ObjectID     int64     `json:"object_id"`
	Method       string    `json:"method"`
	RiskLevel    string    `json:"risk_level"`
	Confidence   float64   `json:"confidence"`
	Description  *string   `json:"description,omitempty"`
	QualityGrade *string   `json:"quality_grade,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// AlertPublisher Kafka告警发布器
type AlertPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewAlertPublisher 创建告警发布器，KAFKA_BROKERS未配置时返回nil表示禁用
func NewAlertPublisher() *AlertPublisher {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		slog.Info("未配置KAFKA_BROKERS, 高风险告警发布禁用")
		return nil
	}

	topic := os.Getenv("KAFKA_ALERT_TOPIC")
	if topic == "" {
		topic = defaultAlertTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}

	slog.Info("高风险告警发布器已启用", "brokers", brokers, "topic", topic)
	return &AlertPublisher{writer: writer, timeout: 10 * time.Second}
}

// PublishHighRisk 发布一条高风险告警，失败只记日志不外传
func (p *AlertPublisher) PublishHighRisk(insp *models.Inspection, result risk.Result) {
	alert := HighRiskAlert{
		DiagID:       insp.DiagID,
		ObjectID:     insp.ObjectID,
		Method:       insp.Method,
		RiskLevel:    string(result.Level),
		Confidence:   result.Confidence,
		Description:  insp.DefectDescription,
		QualityGrade: insp.QualityGrade,
		OccurredAt:   time.Now(),
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		slog.Error("告警消息序列化失败", "diag_id", insp.DiagID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(insp.Method),
		Value: payload,
	})
	if err != nil {
		slog.Error("高风险告警发布失败", "diag_id", insp.DiagID, "error", err)
		return
	}

	monitoring.RecordHighRiskAlert()
	slog.Info("高风险告警已发布", "diag_id", insp.DiagID, "confidence", result.Confidence)
}

// Close 关闭底层生产者
func (p *AlertPublisher) Close() error {
	return p.writer.Close()
}
