/*
 * @module service/importer/csv_importer
 * @description CSV批量导入管道，识别对象档案/诊断记录两类文件，逐行导入并触发风险分类
 * @architecture 分层架构 - 数据接入层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 上传文件 -> 编码归一化 -> 表头识别 -> 逐行解析 -> 去重校验 -> 入库打标
 * @rules 单行失败不中断整批导入，错误与警告按行号汇总返回
 * @dependencies encoding/csv, github.com/spf13/cast, golang.org/x/text
 * @refs service/inspection, service/pipeline, service/monitoring
 */

package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"inspection-service/service/inspection"
	"inspection-service/service/models"
	"inspection-service/service/monitoring"
	"inspection-service/service/pipeline"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Service CSV导入服务
type Service struct {
	pipelineService   *pipeline.Service
	inspectionService *inspection.Service
}

// NewService 创建导入服务实例
func NewService(pipelineService *pipeline.Service, inspectionService *inspection.Service) *Service {
	return &Service{
		pipelineService:   pipelineService,
		inspectionService: inspectionService,
	}
}

// ImportCSV 导入一个CSV文件，按表头自动识别文件类型
func (s *Service) ImportCSV(r io.Reader) (*models.ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}

	rows, err := parseCSV(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("文件不含表头")
	}

	header := rows[0]
	records := rows[1:]
	result := &models.ImportResult{
		TotalRows: len(records),
		Errors:    []string{},
		Warnings:  []string{},
	}

	switch {
	case hasColumns(header, "object_id", "object_name"):
		s.importObjects(header, records, result)
	case hasColumns(header, "diag_id", "method"):
		s.importInspections(header, records, result)
	default:
		return nil, fmt.Errorf("无法识别的文件格式, 期望对象档案或诊断记录CSV")
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

// parseCSV 解析CSV字节流，非UTF-8内容按GB18030解码归一化
func parseCSV(raw []byte) ([][]string, error) {
	// 去除UTF-8 BOM
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
		if err != nil {
			return nil, fmt.Errorf("文件编码无法识别: %w", err)
		}
		raw = decoded
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // 允许行尾缺列, 逐行自行校验
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV解析失败: %w", err)
	}
	return rows, nil
}

// hasColumns 判断表头是否同时含有指定列
func hasColumns(header []string, cols ...string) bool {
	index := headerIndex(header)
	for _, col := range cols {
		if _, ok := index[col]; !ok {
			return false
		}
	}
	return true
}

// headerIndex 构造列名到下标的映射
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return index
}

// rowReader 单行字段读取器，按列名取值
type rowReader struct {
	index map[string]int
	row   []string
}

// get 取指定列的原始字符串，缺列或空白返回空串
func (r *rowReader) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

// getFloat 取浮点列，空值返回nil
func (r *rowReader) getFloat(col string) (*float64, error) {
	raw := r.get(col)
	if raw == "" {
		return nil, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, fmt.Errorf("列%s取值%q不是数值", col, raw)
	}
	return &v, nil
}

// getString 取字符串列，空值返回nil
func (r *rowReader) getString(col string) *string {
	raw := r.get(col)
	if raw == "" {
		return nil
	}
	return &raw
}

// importObjects 导入对象档案文件
func (s *Service) importObjects(header []string, records [][]string, result *models.ImportResult) {
	index := headerIndex(header)
	for i, record := range records {
		rowNum := i + 1
		reader := &rowReader{index: index, row: record}

		err := s.importObjectRow(reader)
		switch {
		case err == nil:
			result.ImportedRows++
			monitoring.RecordImportRow("imported")
		case strings.Contains(err.Error(), "已存在"):
			result.Warnings = append(result.Warnings, fmt.Sprintf("第%d行: %v", rowNum, err))
			monitoring.RecordImportRow("skipped")
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %v", rowNum, err))
			monitoring.RecordImportRow("failed")
		}
	}
}

// importObjectRow 导入单行对象档案
func (s *Service) importObjectRow(r *rowReader) error {
	objectID, err := cast.ToInt64E(r.get("object_id"))
	if err != nil {
		return fmt.Errorf("object_id取值%q非法", r.get("object_id"))
	}

	pipelineID := r.get("pipeline_id")
	if pipelineID == "" {
		pipelineID = "UNKNOWN"
	}
	if _, err := s.pipelineService.GetOrCreatePipeline(pipelineID); err != nil {
		return fmt.Errorf("管线建档失败: %w", err)
	}

	objectType := r.get("object_type")
	if objectType == "" {
		objectType = models.ObjectTypePipelineSection
	}

	obj := &models.PipelineObject{
		ObjectID:   objectID,
		ObjectName: r.get("object_name"),
		ObjectType: objectType,
		PipelineID: pipelineID,
		Lat:        cast.ToFloat64(r.get("lat")),
		Lon:        cast.ToFloat64(r.get("lon")),
		Material:   r.getString("material"),
	}
	if year := r.get("year"); year != "" {
		y, err := cast.ToIntE(year)
		if err != nil {
			return fmt.Errorf("year取值%q非法", year)
		}
		obj.Year = &y
	}

	return s.pipelineService.CreateObject(obj)
}

// importInspections 导入诊断记录文件
func (s *Service) importInspections(header []string, records [][]string, result *models.ImportResult) {
	index := headerIndex(header)
	for i, record := range records {
		rowNum := i + 1
		reader := &rowReader{index: index, row: record}

		err := s.importInspectionRow(reader)
		switch {
		case err == nil:
			result.ImportedRows++
			monitoring.RecordImportRow("imported")
		case strings.Contains(err.Error(), "已存在"):
			result.Warnings = append(result.Warnings, fmt.Sprintf("第%d行: %v", rowNum, err))
			monitoring.RecordImportRow("skipped")
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %v", rowNum, err))
			monitoring.RecordImportRow("failed")
		}
	}
}

// importInspectionRow 导入单行诊断记录，缺陷行由检测服务分类打标
func (s *Service) importInspectionRow(r *rowReader) error {
	diagID, err := cast.ToInt64E(r.get("diag_id"))
	if err != nil {
		return fmt.Errorf("diag_id取值%q非法", r.get("diag_id"))
	}
	objectID, err := cast.ToInt64E(r.get("object_id"))
	if err != nil {
		return fmt.Errorf("object_id取值%q非法", r.get("object_id"))
	}

	date, err := parseDate(r.get("date"))
	if err != nil {
		return err
	}

	insp := &models.Inspection{
		DiagID:            diagID,
		ObjectID:          objectID,
		Method:            r.get("method"),
		Date:              date,
		DefectFound:       cast.ToBool(r.get("defect_found")),
		DefectDescription: r.getString("defect_description"),
		QualityGrade:      r.getString("quality_grade"),
	}

	floatCols := []struct {
		col  string
		dest **float64
	}{
		{"temperature", &insp.Temperature},
		{"humidity", &insp.Humidity},
		{"illumination", &insp.Illumination},
		{"param1", &insp.Param1},
		{"param2", &insp.Param2},
		{"param3", &insp.Param3},
	}
	for _, fc := range floatCols {
		v, err := r.getFloat(fc.col)
		if err != nil {
			return err
		}
		*fc.dest = v
	}

	return s.inspectionService.CreateInspection(insp)
}

// dateLayouts 支持的日期格式
var dateLayouts = []string{"2006-01-02", "2006/01/02", "02.01.2006", time.RFC3339}

// parseDate 解析日期列
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("date列为空")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date取值%q无法解析", raw)
}
