/*
 * @module service/inspection/repair_work_test
 * @description 维修工单服务单元测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 内存数据库初始化 -> 测试数据构造 -> 服务调用 -> 断言
 * @rules 使用内存sqlite，禁止依赖外部环境
 * @dependencies testify, testutil
 * @refs repair_work.go
 */

package inspection

import (
	"testing"

	"inspection-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRepairWork(t *testing.T) {
	svc, factory, _ := newTestService(t)
	pl := factory.CreatePipeline()
	obj := factory.CreateObject(pl.PipelineID)
	insp := factory.CreateInspection(obj.ObjectID)

	work := &models.RepairWork{
		InspectionID: insp.DiagID,
		Title:        "管段补焊",
		Priority:     "high",
	}
	require.NoError(t, svc.CreateRepairWork(work))
	assert.NotEmpty(t, work.ID)
	assert.Equal(t, models.WorkStatusPlanned, work.Status)
}

func TestCreateRepairWorkMissingInspection(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.CreateRepairWork(&models.RepairWork{
		InspectionID: 777777,
		Title:        "悬空工单",
	})
	assert.ErrorContains(t, err, "不存在")
}

func TestGetRepairWorksStatusFilter(t *testing.T) {
	svc, factory, _ := newTestService(t)
	pl := factory.CreatePipeline()
	obj := factory.CreateObject(pl.PipelineID)
	insp := factory.CreateInspection(obj.ObjectID)

	factory.CreateRepairWork(insp.DiagID)
	factory.CreateRepairWork(insp.DiagID, func(w *models.RepairWork) {
		w.Status = models.WorkStatusInProgress
	})

	works, total, err := svc.GetRepairWorks(1, 20, models.WorkStatusInProgress)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, works, 1)
	assert.Equal(t, models.WorkStatusInProgress, works[0].Status)

	_, total, err = svc.GetRepairWorks(1, 20, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestUpdateRepairWorkStatus(t *testing.T) {
	svc, factory, _ := newTestService(t)
	pl := factory.CreatePipeline()
	obj := factory.CreateObject(pl.PipelineID)
	insp := factory.CreateInspection(obj.ObjectID)
	work := factory.CreateRepairWork(insp.DiagID)

	// 非法状态
	_, err := svc.UpdateRepairWorkStatus(work.ID, "done")
	assert.ErrorContains(t, err, "无效的工单状态")

	// 完成时自动补记完成日期
	_, err = svc.UpdateRepairWorkStatus(work.ID, models.WorkStatusCompleted)
	require.NoError(t, err)

	var stored models.RepairWork
	require.NoError(t, svc.db.First(&stored, "id = ?", work.ID).Error)
	assert.Equal(t, models.WorkStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedDate)
}
