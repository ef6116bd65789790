/*
 * @module service/dashboard/dashboard_service_test
 * @description 统计看板服务单元测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 内存数据库初始化 -> 测试数据构造 -> 聚合统计 -> 断言
 * @rules 使用内存sqlite，不启用Redis缓存
 * @dependencies testify, testutil
 * @refs dashboard_service.go
 */

package dashboard

import (
	"context"
	"testing"
	"time"

	"inspection-service/service/models"
	"inspection-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T) (*Service, *testutil.TestDataFactory) {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewServiceWithCache(tdb.DB, nil), testutil.NewTestDataFactory(tdb.DB)
}

func TestGetStatsEmptyDatabase(t *testing.T) {
	svc, _ := newTestDashboard(t)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalObjects)
	assert.EqualValues(t, 0, stats.TotalInspections)
	assert.EqualValues(t, 0, stats.TotalDefects)
	assert.Empty(t, stats.TopRisks)
}

func TestGetStatsAggregation(t *testing.T) {
	svc, factory := newTestDashboard(t)

	pl := factory.CreatePipeline()
	obj := factory.CreateObject(pl.PipelineID)

	high := "high"
	conf := 0.9
	factory.CreateInspection(obj.ObjectID, testutil.WithMethod("UZK"),
		testutil.WithDefect(models.GradeUnacceptable, 25, 120, 40),
		func(i *models.Inspection) {
			i.MLLabel = &high
			i.MLConfidence = &conf
			desc := "纵向裂纹"
			i.DefectDescription = &desc
		})
	factory.CreateInspection(obj.ObjectID, testutil.WithMethod("VIK"))
	factory.CreateInspection(obj.ObjectID, testutil.WithMethod("VIK"),
		func(i *models.Inspection) {
			i.Date = time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)
		})

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.TotalObjects)
	assert.EqualValues(t, 3, stats.TotalInspections)
	assert.EqualValues(t, 1, stats.TotalDefects)
	assert.EqualValues(t, 1, stats.DefectsByMethod["UZK"])
	assert.EqualValues(t, 1, stats.DefectsByRisk["high"])
	assert.EqualValues(t, 2, stats.InspectionsByYear["2024"])
	assert.EqualValues(t, 1, stats.InspectionsByYear["2023"])
	assert.EqualValues(t, 1, stats.DefectsByYear["2024"])

	require.Len(t, stats.TopRisks, 1)
	top := stats.TopRisks[0]
	assert.Equal(t, obj.ObjectID, top.ObjectID)
	assert.Equal(t, obj.ObjectName, top.ObjectName)
	assert.Equal(t, "high", top.RiskLevel)
	require.NotNil(t, top.Confidence)
	assert.InDelta(t, 0.9, *top.Confidence, 1e-9)
}

func TestTopRisksOrderedByConfidence(t *testing.T) {
	svc, factory := newTestDashboard(t)

	pl := factory.CreatePipeline()
	obj := factory.CreateObject(pl.PipelineID)

	high := "high"
	for _, conf := range []float64{0.6, 0.95, 0.8} {
		c := conf
		factory.CreateInspection(obj.ObjectID, testutil.WithMethod("MFL"),
			testutil.WithDefect(models.GradeUnacceptable, 25, 120, 40),
			func(i *models.Inspection) {
				i.MLLabel = &high
				i.MLConfidence = &c
			})
	}

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.TopRisks, 3)
	assert.InDelta(t, 0.95, *stats.TopRisks[0].Confidence, 1e-9)
	assert.InDelta(t, 0.8, *stats.TopRisks[1].Confidence, 1e-9)
	assert.InDelta(t, 0.6, *stats.TopRisks[2].Confidence, 1e-9)
}
