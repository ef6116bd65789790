/*
 * @module service/importer/csv_importer_test
 * @description CSV导入服务单元测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 内存数据库初始化 -> 构造CSV内容 -> 导入 -> 断言结果与库内数据
 * @rules 使用内存sqlite，禁止依赖外部环境
 * @dependencies testify, testutil
 * @refs csv_importer.go
 */

package importer

import (
	"bytes"
	"strings"
	"testing"

	"inspection-service/service/inspection"
	"inspection-service/service/models"
	"inspection-service/service/pipeline"
	"inspection-service/service/risk"
	"inspection-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
)

func newTestImporter(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	pipelineService := pipeline.NewService(tdb.DB)
	classifier := risk.NewClassifierWithModelDir(t.TempDir())
	inspectionService := inspection.NewService(tdb.DB, classifier, nil)
	return NewService(pipelineService, inspectionService), tdb.DB
}

const objectsCSV = `object_id,object_name,object_type,pipeline_id,lat,lon,year,material
101,压缩机A,compressor,PL-7,55.75,37.61,2008,steel
102,管段K12,pipeline_section,PL-7,55.80,37.70,,
`

func TestImportObjectsCSV(t *testing.T) {
	svc, db := newTestImporter(t)

	result, err := svc.ImportCSV(strings.NewReader(objectsCSV))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.ImportedRows)
	assert.Empty(t, result.Errors)

	// 自动建档管线
	var pl models.Pipeline
	require.NoError(t, db.Where("pipeline_id = ?", "PL-7").First(&pl).Error)

	var obj models.PipelineObject
	require.NoError(t, db.Where("object_id = ?", 101).First(&obj).Error)
	assert.Equal(t, "压缩机A", obj.ObjectName)
	assert.Equal(t, models.ObjectTypeCompressor, obj.ObjectType)
	require.NotNil(t, obj.Year)
	assert.Equal(t, 2008, *obj.Year)
}

func TestImportObjectsDuplicateWarns(t *testing.T) {
	svc, _ := newTestImporter(t)

	_, err := svc.ImportCSV(strings.NewReader(objectsCSV))
	require.NoError(t, err)

	// 重复导入同一文件: 全部行降级为警告，不算失败
	result, err := svc.ImportCSV(strings.NewReader(objectsCSV))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ImportedRows)
	assert.Len(t, result.Warnings, 2)
}

func TestImportInspectionsCSV(t *testing.T) {
	svc, db := newTestImporter(t)

	_, err := svc.ImportCSV(strings.NewReader(objectsCSV))
	require.NoError(t, err)

	inspectionsCSV := `diag_id,object_id,method,date,defect_found,quality_grade,param1,param2,param3,temperature,humidity
5001,101,UZK,2024-03-15,true,unacceptable,25,120,40,18,55
5002,102,VIK,2024/03/16,false,,,,,20,50
5003,999,VIK,2024-03-17,false,,,,,,
5004,101,UZK,not-a-date,false,,,,,,
`
	result, err := svc.ImportCSV(strings.NewReader(inspectionsCSV))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.ImportedRows)
	require.Len(t, result.Errors, 2) // 对象不存在 + 日期非法

	// 缺陷行入库时已完成风险打标
	var defect models.Inspection
	require.NoError(t, db.Where("diag_id = ?", 5001).First(&defect).Error)
	require.NotNil(t, defect.MLLabel)
	assert.Equal(t, string(risk.RiskHigh), *defect.MLLabel)

	// 无缺陷行不打标
	var normal models.Inspection
	require.NoError(t, db.Where("diag_id = ?", 5002).First(&normal).Error)
	assert.Nil(t, normal.MLLabel)
}

func TestImportGB18030Encoding(t *testing.T) {
	svc, db := newTestImporter(t)

	// 模拟Windows导出的GB18030编码文件
	encoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewEncoder(), []byte(objectsCSV))
	require.NoError(t, err)

	result, err := svc.ImportCSV(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedRows)

	var obj models.PipelineObject
	require.NoError(t, db.Where("object_id = ?", 101).First(&obj).Error)
	assert.Equal(t, "压缩机A", obj.ObjectName)
}

func TestImportBOMPrefix(t *testing.T) {
	svc, _ := newTestImporter(t)

	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte(objectsCSV)...)
	result, err := svc.ImportCSV(bytes.NewReader(withBOM))
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedRows)
}

func TestImportUnrecognizedFormat(t *testing.T) {
	svc, _ := newTestImporter(t)

	_, err := svc.ImportCSV(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorContains(t, err, "无法识别的文件格式")
}
