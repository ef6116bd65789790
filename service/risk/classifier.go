/*
 * @module service/risk/classifier
 * @description 风险分类门面，优先使用模型分类器，不可用或失败时静默回退规则分类器
 * @architecture 分层架构 - 风险分类引擎
 * @documentReference dev_docs/risk_engine.md
 * @stateFlow 未加载 -> (一次性惰性加载) -> 模型可用|模型不可用；之后复用已解析状态
 * @rules Classify/Explain对外永不报错，最坏情况为置信度0.5的规则兜底结果
 * @dependencies log/slog, sync, inspection-service/service/monitoring
 * @refs rules.go, model.go, explain.go
 */

package risk

import (
	"log/slog"
	"os"
	"sync"

	"inspection-service/service/monitoring"
)

// 分类引擎标识，用于日志与指标
const (
	engineModel = "model"
	engineRules = "rules"
)

// Classifier 分类门面，进程启动时构造一次并注入各服务
type Classifier struct {
	defaults Defaults
	modelDir string

	loadOnce sync.Once
	artifact *ModelArtifact // 加载失败或缺失时保持nil
}

// NewClassifier 创建分类门面，模型目录取MODEL_PATH环境变量，缺省./models
func NewClassifier() *Classifier {
	dir := os.Getenv("MODEL_PATH")
	if dir == "" {
		dir = "./models"
	}
	return NewClassifierWithModelDir(dir)
}

// NewClassifierWithModelDir 指定模型目录创建分类门面
func NewClassifierWithModelDir(dir string) *Classifier {
	return &Classifier{
		defaults: DefaultDefaults(),
		modelDir: dir,
	}
}

// ensureModel 一次性惰性加载模型导出件，并发首调安全
func (c *Classifier) ensureModel() {
	c.loadOnce.Do(func() {
		artifact, err := LoadModelArtifact(c.modelDir)
		if err != nil {
			if err == ErrModelUnavailable {
				slog.Info("未检测到模型导出件, 使用规则分类器", "model_dir", c.modelDir)
			} else {
				slog.Warn("模型导出件加载失败, 使用规则分类器", "model_dir", c.modelDir, "error", err)
			}
			return
		}
		c.artifact = artifact
		slog.Info("模型导出件加载成功",
			"model_type", artifact.Meta.ModelType,
			"accuracy", artifact.Meta.Accuracy,
			"n_trees", len(artifact.Trees))
	})
}

// Classify 分类入口，对外永不报错
func (c *Classifier) Classify(obs *Observation) Result {
	c.ensureModel()

	if c.artifact != nil {
		result, err := classifyModel(obs, c.artifact, c.defaults)
		if err == nil {
			monitoring.RecordClassification(engineModel, string(result.Level))
			return result
		}
		// 模型推理失败不外传，回退规则引擎
		slog.Warn("模型推理失败, 回退规则分类器", "error", err)
		monitoring.RecordModelFallback()
	}

	result := ClassifyRules(obs)
	monitoring.RecordClassification(engineRules, string(result.Level))
	return result
}

// ModelStatus 模型状态，供运维接口查询
type ModelStatus struct {
	Loaded       bool     `json:"loaded"`
	ModelDir     string   `json:"model_dir"`
	ModelType    string   `json:"model_type,omitempty"`
	Accuracy     float64  `json:"accuracy,omitempty"`
	NEstimators  int      `json:"n_estimators,omitempty"`
	FeatureNames []string `json:"feature_names,omitempty"`
}

// Status 返回当前模型加载状态
func (c *Classifier) Status() ModelStatus {
	c.ensureModel()

	status := ModelStatus{ModelDir: c.modelDir}
	if c.artifact != nil {
		status.Loaded = true
		status.ModelType = c.artifact.Meta.ModelType
		status.Accuracy = c.artifact.Meta.Accuracy
		status.NEstimators = c.artifact.Meta.NEstimators
		status.FeatureNames = c.artifact.Meta.FeatureNames
	}
	return status
}
