/*
 * @module service/risk/model_test
 * @description 模型分类器测试，覆盖导出件加载校验、森林推理与异常防御
 * @architecture 测试层
 * @documentReference dev_docs/risk_engine.md
 * @stateFlow 落盘测试导出件 -> 加载 -> 推理 -> 断言
 * @rules 使用t.TempDir()隔离模型目录
 * @dependencies testing, encoding/json, github.com/stretchr/testify/assert, github.com/stretchr/testify/require
 * @refs model.go
 */

package risk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestArtifact 将森林与元数据写入目录，构造可加载的测试导出件
func writeTestArtifact(t *testing.T, dir string, trees [][]treeNode, meta ModelMetadata) {
	t.Helper()

	forestData, err := json.Marshal(forestFile{Trees: trees})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, modelFileName), forestData, 0o644))

	metaData, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFileName), metaData, 0o644))
}

// testMeta 与本侧特征契约一致的元数据
func testMeta() ModelMetadata {
	return ModelMetadata{
		Accuracy:     0.91,
		FeatureNames: append([]string{}, FeatureNames...),
		ModelType:    "RandomForestClassifier",
		NEstimators:  1,
		Classes:      []string{"normal", "medium", "high"},
	}
}

// testForest 单树森林：按quality_score(特征0)在2.5处分裂
func testForest() [][]treeNode {
	return [][]treeNode{{
		{Feature: 0, Threshold: 2.5, Left: 1, Right: 2},
		{Feature: -1, Dist: []float64{0.8, 0.15, 0.05}},
		{Feature: -1, Dist: []float64{0.05, 0.2, 0.75}},
	}}
}

// 目录为空时返回模型不可用，而非错误
func TestLoadModelArtifactAbsent(t *testing.T) {
	_, err := LoadModelArtifact(t.TempDir())
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

// 只有模型文件没有元数据同样视为不可用
func TestLoadModelArtifactMissingMetadata(t *testing.T) {
	dir := t.TempDir()
	forestData, err := json.Marshal(forestFile{Trees: testForest()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, modelFileName), forestData, 0o644))

	_, err = LoadModelArtifact(dir)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

// 损坏的JSON在加载期报错
func TestLoadModelArtifactCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, modelFileName), []byte("{broken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFileName), []byte("{}"), 0o644))

	_, err := LoadModelArtifact(dir)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelUnavailable)
}

// 特征名顺序不一致的导出件在加载期被拒绝
func TestLoadModelArtifactFeatureMismatch(t *testing.T) {
	dir := t.TempDir()
	meta := testMeta()
	meta.FeatureNames[0], meta.FeatureNames[1] = meta.FeatureNames[1], meta.FeatureNames[0]
	writeTestArtifact(t, dir, testForest(), meta)

	_, err := LoadModelArtifact(dir)
	assert.Error(t, err)
}

// 正常导出件加载成功并能按分裂规则推理
func TestModelPredictProba(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifact(t, dir, testForest(), testMeta())

	artifact, err := LoadModelArtifact(dir)
	require.NoError(t, err)

	// quality_score=4 走右子树
	obs := &Observation{DefectFound: true, QualityGrade: strPtr(GradeUnacceptable)}
	result, err := classifyModel(obs, artifact, DefaultDefaults())
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, result.Level)
	assert.InDelta(t, 0.75, result.Confidence, 1e-12)

	// quality_score=1 走左子树
	obs = &Observation{DefectFound: true, QualityGrade: strPtr(GradeSatisfactory)}
	result, err = classifyModel(obs, artifact, DefaultDefaults())
	require.NoError(t, err)
	assert.Equal(t, RiskNormal, result.Level)
	assert.InDelta(t, 0.8, result.Confidence, 1e-12)
}

// 多树森林概率取均值
func TestModelPredictProbaAveragesTrees(t *testing.T) {
	dir := t.TempDir()
	trees := [][]treeNode{
		{{Feature: -1, Dist: []float64{1, 0, 0}}},
		{{Feature: -1, Dist: []float64{0, 0, 1}}},
		{{Feature: -1, Dist: []float64{0, 0, 1}}},
	}
	meta := testMeta()
	meta.NEstimators = 3
	writeTestArtifact(t, dir, trees, meta)

	artifact, err := LoadModelArtifact(dir)
	require.NoError(t, err)

	proba, err := artifact.PredictProba(Engineer(&Observation{}, DefaultDefaults()))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, proba[0], 1e-12)
	assert.InDelta(t, 2.0/3.0, proba[2], 1e-12)
}

// 未知类别标签映射为medium
func TestLabelToLevelUnknown(t *testing.T) {
	assert.Equal(t, RiskMedium, labelToLevel("critical"))
	assert.Equal(t, RiskNormal, labelToLevel("normal"))
	assert.Equal(t, RiskHigh, labelToLevel("high"))
}

// 畸形树结构在推理期报错而非panic
func TestModelPredictMalformedTree(t *testing.T) {
	cases := map[string][][]treeNode{
		"索引越界": {{
			{Feature: 0, Threshold: 1, Left: 5, Right: 6},
		}},
		"环状结构": {{
			{Feature: 0, Threshold: 1e9, Left: 0, Right: 0},
		}},
		"叶子缺分布": {{
			{Feature: -1},
		}},
		"分布维数不符": {{
			{Feature: -1, Dist: []float64{0.5, 0.5}},
		}},
		"特征索引非法": {{
			{Feature: 99, Threshold: 1, Left: 1, Right: 2},
			{Feature: -1, Dist: []float64{1, 0, 0}},
			{Feature: -1, Dist: []float64{1, 0, 0}},
		}},
	}

	for name, trees := range cases {
		artifact := &ModelArtifact{Trees: trees, Meta: testMeta()}
		_, err := artifact.PredictProba(Engineer(&Observation{}, DefaultDefaults()))
		assert.Error(t, err, name)
	}
}
