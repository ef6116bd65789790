/*
 * @module service/pipeline/pipeline_service_test
 * @description 管线与检测对象服务单元测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 内存数据库初始化 -> 测试数据构造 -> 服务调用 -> 断言
 * @rules 使用内存sqlite，禁止依赖外部环境
 * @dependencies testify, testutil
 * @refs pipeline_service.go
 */

package pipeline

import (
	"testing"

	"inspection-service/service/models"
	"inspection-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Service, *testutil.TestDataFactory) {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewService(tdb.DB), testutil.NewTestDataFactory(tdb.DB)
}

func TestGetOrCreatePipeline(t *testing.T) {
	svc, _ := newTestPipeline(t)

	created, err := svc.GetOrCreatePipeline("PL-42")
	require.NoError(t, err)
	assert.Equal(t, "PL-42", created.PipelineID)
	assert.NotEmpty(t, created.Name)

	// 二次调用返回已有记录
	again, err := svc.GetOrCreatePipeline("PL-42")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, total, err := svc.GetPipelines(1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCreateObjectValidation(t *testing.T) {
	svc, factory := newTestPipeline(t)
	pl := factory.CreatePipeline()

	err := svc.CreateObject(&models.PipelineObject{
		ObjectID:   301,
		ObjectName: "泵站B",
		ObjectType: "pump_station",
		PipelineID: pl.PipelineID,
	})
	assert.ErrorContains(t, err, "无效的检测对象类型")

	require.NoError(t, svc.CreateObject(&models.PipelineObject{
		ObjectID:   301,
		ObjectName: "吊装机B",
		ObjectType: models.ObjectTypeCrane,
		PipelineID: pl.PipelineID,
	}))

	// object_id为业务主键
	err = svc.CreateObject(&models.PipelineObject{
		ObjectID:   301,
		ObjectName: "重复对象",
		ObjectType: models.ObjectTypeCrane,
		PipelineID: pl.PipelineID,
	})
	assert.ErrorContains(t, err, "已存在")
}

func TestGetObjectsFilters(t *testing.T) {
	svc, factory := newTestPipeline(t)
	pl := factory.CreatePipeline()
	other := factory.CreatePipeline()

	factory.CreateObject(pl.PipelineID)
	factory.CreateObject(pl.PipelineID, func(o *models.PipelineObject) {
		o.ObjectType = models.ObjectTypeCompressor
	})
	factory.CreateObject(other.PipelineID)

	_, total, err := svc.GetObjects(1, 20, pl.PipelineID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	objects, total, err := svc.GetObjects(1, 20, pl.PipelineID, models.ObjectTypeCompressor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, objects, 1)
	assert.Equal(t, models.ObjectTypeCompressor, objects[0].ObjectType)
}

func TestGetObjectWithInspections(t *testing.T) {
	svc, factory := newTestPipeline(t)
	pl := factory.CreatePipeline()
	obj := factory.CreateObject(pl.PipelineID)
	factory.CreateInspection(obj.ObjectID)
	factory.CreateInspection(obj.ObjectID, testutil.WithMethod("UZK"))

	loaded, err := svc.GetObjectWithInspections(obj.ObjectID)
	require.NoError(t, err)
	assert.Len(t, loaded.Inspections, 2)
}

func TestDeleteObject(t *testing.T) {
	svc, factory := newTestPipeline(t)
	pl := factory.CreatePipeline()
	obj := factory.CreateObject(pl.PipelineID)

	require.NoError(t, svc.DeleteObject(obj.ObjectID))
	_, err := svc.GetObject(obj.ObjectID)
	assert.Error(t, err)
	assert.Error(t, svc.DeleteObject(obj.ObjectID))
}
