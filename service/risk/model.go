/*
 * @module service/risk/model
 * @description 模型风险分类器，加载外部训练的随机森林导出件并执行推理
 * @architecture 分层架构 - 风险分类引擎
 * @documentReference dev_docs/risk_engine.md, scripts/train_risk_model
 * @stateFlow 载入risk_model.json与model_metadata.json -> 特征向量推理 -> 概率聚合
 * @rules 模型文件缺失属正常状态，不作为错误；推理失败以error返回由门面兜底
 * @dependencies encoding/json, os, path/filepath
 * @refs features.go, classifier.go
 */

package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// 模型导出件文件名，训练侧导出约定
const (
	modelFileName    = "risk_model.json"
	metadataFileName = "model_metadata.json"
)

// ModelMetadata 模型元数据，与导出件一同落盘
type ModelMetadata struct {
	Accuracy     float64  `json:"accuracy"`
	FeatureNames []string `json:"feature_names"`
	ModelType    string   `json:"model_type"`
	NEstimators  int      `json:"n_estimators"`
	Classes      []string `json:"classes"` // 类别标签顺序，概率分布按此顺序对齐
}

// treeNode 决策树节点，Feature为-1时表示叶子
type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Dist      []float64 `json:"dist,omitempty"` // 叶子节点的类别概率分布
}

// ModelArtifact 已加载的模型导出件
type ModelArtifact struct {
	Trees [][]treeNode
	Meta  ModelMetadata
}

// forestFile risk_model.json的顶层结构
type forestFile struct {
	Trees [][]treeNode `json:"trees"`
}

// ErrModelUnavailable 模型不可用（文件缺失），属正常降级状态
var ErrModelUnavailable = fmt.Errorf("模型导出件不存在")

// LoadModelArtifact 从目录加载模型导出件，文件缺失返回ErrModelUnavailable
func LoadModelArtifact(dir string) (*ModelArtifact, error) {
	modelPath := filepath.Join(dir, modelFileName)
	metaPath := filepath.Join(dir, metadataFileName)

	modelData, err := os.ReadFile(modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelUnavailable
		}
		return nil, fmt.Errorf("读取模型文件失败: %w", err)
	}
	metaData, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelUnavailable
		}
		return nil, fmt.Errorf("读取模型元数据失败: %w", err)
	}

	var forest forestFile
	if err := json.Unmarshal(modelData, &forest); err != nil {
		return nil, fmt.Errorf("模型文件解析失败: %w", err)
	}
	var meta ModelMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("模型元数据解析失败: %w", err)
	}

	artifact := &ModelArtifact{Trees: forest.Trees, Meta: meta}
	if err := artifact.validate(); err != nil {
		return nil, err
	}
	return artifact, nil
}

// validate 校验导出件与本侧特征契约一致
func (a *ModelArtifact) validate() error {
	if len(a.Trees) == 0 {
		return fmt.Errorf("模型不含任何决策树")
	}
	if len(a.Meta.Classes) == 0 {
		return fmt.Errorf("模型元数据缺少类别标签")
	}
	if len(a.Meta.FeatureNames) != len(FeatureNames) {
		return fmt.Errorf("特征维数不匹配: 模型%d维, 期望%d维",
			len(a.Meta.FeatureNames), len(FeatureNames))
	}
	for i, name := range a.Meta.FeatureNames {
		if name != FeatureNames[i] {
			return fmt.Errorf("特征顺序不匹配: 第%d个特征为%s, 期望%s", i, name, FeatureNames[i])
		}
	}
	return nil
}

// PredictProba 对特征向量预测类别概率分布（各树叶子分布的均值）
func (a *ModelArtifact) PredictProba(fv FeatureVector) ([]float64, error) {
	proba := make([]float64, len(a.Meta.Classes))
	for ti, tree := range a.Trees {
		dist, err := traverse(tree, fv)
		if err != nil {
			return nil, fmt.Errorf("第%d棵树推理失败: %w", ti, err)
		}
		if len(dist) != len(proba) {
			return nil, fmt.Errorf("第%d棵树叶子分布维数%d与类别数%d不符", ti, len(dist), len(proba))
		}
		for ci, p := range dist {
			proba[ci] += p
		}
	}
	n := float64(len(a.Trees))
	for ci := range proba {
		proba[ci] /= n
	}
	return proba, nil
}

// traverse 单棵树的推理遍历，对越界索引防御性报错而非panic
func traverse(tree []treeNode, fv FeatureVector) ([]float64, error) {
	idx := 0
	for steps := 0; steps <= len(tree); steps++ {
		if idx < 0 || idx >= len(tree) {
			return nil, fmt.Errorf("节点索引越界: %d", idx)
		}
		node := tree[idx]
		if node.Feature < 0 {
			if len(node.Dist) == 0 {
				return nil, fmt.Errorf("叶子节点%d缺少类别分布", idx)
			}
			return node.Dist, nil
		}
		if node.Feature >= FeatureCount {
			return nil, fmt.Errorf("节点%d引用了不存在的特征%d", idx, node.Feature)
		}
		if fv[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return nil, fmt.Errorf("树遍历步数超限, 疑似环状结构")
}

// classifyModel 模型分类：特征工程 -> 概率推理 -> 取最大概率类别
func classifyModel(obs *Observation, artifact *ModelArtifact, defaults Defaults) (Result, error) {
	fv := Engineer(obs, defaults)

	proba, err := artifact.PredictProba(fv)
	if err != nil {
		return Result{}, err
	}

	best := 0
	for ci := range proba {
		if proba[ci] > proba[best] {
			best = ci
		}
	}

	return Result{
		Level:      labelToLevel(artifact.Meta.Classes[best]),
		Confidence: proba[best],
	}, nil
}

// labelToLevel 类别标签映射为风险等级，未知标签取medium
func labelToLevel(label string) RiskLevel {
	switch label {
	case string(RiskNormal):
		return RiskNormal
	case string(RiskMedium):
		return RiskMedium
	case string(RiskHigh):
		return RiskHigh
	default:
		return RiskMedium
	}
}
