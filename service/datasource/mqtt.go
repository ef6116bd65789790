/*
 * @module service/datasource/mqtt
 * @description MQTT检测数据接入，订阅现场检测设备上报的诊断报文并落库打标
 * @architecture 发布订阅模式 - 连接MQTT broker并订阅主题
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 连接broker -> 订阅主题 -> 报文解析(可选脚本转换) -> 检测记录入库 -> 风险打标
 * @rules 单条报文解析失败只记日志，不影响后续报文；支持断线自动重连
 * @dependencies github.com/eclipse/paho.mqtt.golang, github.com/spf13/cast
 * @refs service/inspection, script_executor.go
 */

package datasource

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"inspection-service/service/inspection"
	"inspection-service/service/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cast"
)

// 接入缺省参数
const (
	defaultTopic      = "inspection/readings"
	defaultQoS   byte = 1
	connectWait       = 30 * time.Second
)

// MQTTIngest MQTT检测数据接入器
type MQTTIngest struct {
	client            mqtt.Client
	topic             string
	qos               byte
	inspectionService *inspection.Service
	transform         TransformFunc // 可为nil
}

// NewMQTTIngest 创建MQTT接入器，MQTT_BROKER未配置时返回nil表示禁用
func NewMQTTIngest(inspectionService *inspection.Service) (*MQTTIngest, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		slog.Info("未配置MQTT_BROKER, 检测数据MQTT接入禁用")
		return nil, nil
	}

	topic := os.Getenv("MQTT_TOPIC")
	if topic == "" {
		topic = defaultTopic
	}

	ingest := &MQTTIngest{
		topic:             topic,
		qos:               defaultQoS,
		inspectionService: inspectionService,
	}

	// 可选的报文归一化脚本
	if scriptPath := os.Getenv("MQTT_TRANSFORM_SCRIPT"); scriptPath != "" {
		script, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("读取转换脚本失败: %w", err)
		}
		fn, err := NewScriptExecutor().Compile(string(script))
		if err != nil {
			return nil, err
		}
		ingest.transform = fn
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("inspection-service-%d", os.Getpid())).
		SetUsername(os.Getenv("MQTT_USERNAME")).
		SetPassword(os.Getenv("MQTT_PASSWORD")).
		SetAutoReconnect(true).
		SetKeepAlive(60 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			if token := c.Subscribe(topic, ingest.qos, ingest.handleMessage); token.Wait() && token.Error() != nil {
				slog.Error("MQTT主题订阅失败", "topic", topic, "error", token.Error())
				return
			}
			slog.Info("MQTT主题订阅成功", "topic", topic)
		})

	ingest.client = mqtt.NewClient(opts)
	return ingest, nil
}

// Start 连接broker并开始接入
func (m *MQTTIngest) Start() error {
	token := m.client.Connect()
	if !token.WaitTimeout(connectWait) {
		return fmt.Errorf("MQTT连接超时")
	}
	return token.Error()
}

// Stop 断开连接
func (m *MQTTIngest) Stop() {
	m.client.Disconnect(250)
}

// handleMessage 处理单条上报报文
func (m *MQTTIngest) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var record map[string]interface{}
	if err := json.Unmarshal(msg.Payload(), &record); err != nil {
		slog.Warn("MQTT报文不是合法JSON, 丢弃", "topic", msg.Topic(), "error", err)
		return
	}

	if m.transform != nil {
		transformed, err := m.transform(record)
		if err != nil {
			slog.Warn("报文转换脚本执行失败, 丢弃", "error", err)
			return
		}
		record = transformed
	}

	insp, err := inspectionFromRecord(record)
	if err != nil {
		slog.Warn("MQTT报文字段非法, 丢弃", "error", err)
		return
	}

	if err := m.inspectionService.CreateInspection(insp); err != nil {
		slog.Warn("MQTT接入记录入库失败", "diag_id", insp.DiagID, "error", err)
		return
	}
	slog.Debug("MQTT接入记录已入库", "diag_id", insp.DiagID)
}

// inspectionFromRecord 将报文字段映射为检测记录
func inspectionFromRecord(record map[string]interface{}) (*models.Inspection, error) {
	diagID, err := cast.ToInt64E(record["diag_id"])
	if err != nil {
		return nil, fmt.Errorf("diag_id非法: %v", record["diag_id"])
	}
	objectID, err := cast.ToInt64E(record["object_id"])
	if err != nil {
		return nil, fmt.Errorf("object_id非法: %v", record["object_id"])
	}

	date := time.Now()
	if raw, ok := record["date"]; ok {
		parsed, err := cast.ToTimeE(raw)
		if err != nil {
			return nil, fmt.Errorf("date非法: %v", raw)
		}
		date = parsed
	}

	insp := &models.Inspection{
		DiagID:      diagID,
		ObjectID:    objectID,
		Method:      cast.ToString(record["method"]),
		Date:        date,
		DefectFound: cast.ToBool(record["defect_found"]),
	}

	if v, ok := record["defect_description"]; ok && cast.ToString(v) != "" {
		s := cast.ToString(v)
		insp.DefectDescription = &s
	}
	if v, ok := record["quality_grade"]; ok && cast.ToString(v) != "" {
		s := cast.ToString(v)
		insp.QualityGrade = &s
	}

	floatFields := map[string]**float64{
		"temperature":  &insp.Temperature,
		"humidity":     &insp.Humidity,
		"illumination": &insp.Illumination,
		"param1":       &insp.Param1,
		"param2":       &insp.Param2,
		"param3":       &insp.Param3,
	}
	for field, dest := range floatFields {
		raw, ok := record[field]
		if !ok || raw == nil {
			continue
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("%s非法: %v", field, raw)
		}
		*dest = &v
	}

	return insp, nil
}
