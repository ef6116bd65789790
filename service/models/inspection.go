/*
 * @module service/models/inspection
 * @description 管线检测数据模型定义，包括管线、检测对象、检测记录和维修工单
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 数据导入 -> 风险分类 -> 维修工单跟踪
 * @rules diag_id和object_id为业务主键，导入去重以业务主键为准
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/risk, service/importer
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObjectType 检测对象类型
const (
	ObjectTypeCrane           = "crane"
	ObjectTypeCompressor      = "compressor"
	ObjectTypePipelineSection = "pipeline_section"
)

// InspectionMethods 支持的检测方法编码
var InspectionMethods = []string{
	"VIK", "PVK", "MPK", "UZK", "RGK", "TVK", "VIBRO", "MFL", "TFI", "GEO", "UTWM",
}

// 质量等级
const (
	GradeSatisfactory   = "satisfactory"
	GradeAcceptable     = "acceptable"
	GradeRequiresAction = "requires_action"
	GradeUnacceptable   = "unacceptable"
)

// Pipeline 管线模型
type Pipeline struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	PipelineID  string    `gorm:"not null;uniqueIndex;size:50" json:"pipeline_id"`
	Name        string    `gorm:"size:200" json:"name"`
	Description string    `json:"description"`
	TotalLength *float64  `json:"total_length"` // 总长度（km）
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Objects []PipelineObject `gorm:"foreignKey:PipelineID;references:PipelineID" json:"objects,omitempty"`
}

// BeforeCreate 创建前钩子
func (p *Pipeline) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PipelineObject 检测对象模型（吊装机、压缩机、管段等）
type PipelineObject struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	ObjectID   int64     `gorm:"not null;uniqueIndex" json:"object_id"` // 业务主键
	ObjectName string    `gorm:"not null;size:200" json:"object_name"`
	ObjectType string    `gorm:"not null;size:50" json:"object_type"` // crane/compressor/pipeline_section
	PipelineID string    `gorm:"not null;index;size:50" json:"pipeline_id"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Year       *int      `json:"year"`     // 投运年份
	Material   *string   `json:"material"` // 材质
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Inspections []Inspection `gorm:"foreignKey:ObjectID;references:ObjectID" json:"inspections,omitempty"`
}

// BeforeCreate 创建前钩子
func (o *PipelineObject) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// Inspection 检测记录模型，缺陷记录经风险分类引擎打标后写回ml_label/ml_confidence
type Inspection struct {
	ID                string     `gorm:"type:uuid;primary_key" json:"id"`
	DiagID            int64      `gorm:"not null;uniqueIndex" json:"diag_id"` // 业务主键
	ObjectID          int64      `gorm:"not null;index" json:"object_id"`
	Method            string     `gorm:"not null;size:20;index" json:"method"`
	Date              time.Time  `gorm:"not null;index" json:"date"`
	Temperature       *float64   `json:"temperature"`  // 环境温度（°C）
	Humidity          *float64   `json:"humidity"`     // 环境湿度（%）
	Illumination      *float64   `json:"illumination"` // 照度（lux）
	DefectFound       bool       `gorm:"not null;default:false;index" json:"defect_found"`
	DefectDescription *string    `json:"defect_description"`
	QualityGrade      *string    `gorm:"size:50" json:"quality_grade"`
	Param1            *float64   `json:"param1"` // 缺陷深度（mm）
	Param2            *float64   `json:"param2"` // 缺陷长度（mm）
	Param3            *float64   `json:"param3"` // 缺陷宽度（mm）
	MLLabel           *string    `gorm:"size:20;index" json:"ml_label"`
	MLConfidence      *float64   `json:"ml_confidence"`
	CreatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Object *PipelineObject `gorm:"foreignKey:ObjectID;references:ObjectID" json:"object,omitempty"`
}

// BeforeCreate 创建前钩子
func (i *Inspection) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// 维修工单状态
const (
	WorkStatusPlanned    = "planned"
	WorkStatusInProgress = "in_progress"
	WorkStatusCompleted  = "completed"
	WorkStatusCancelled  = "cancelled"
)

// RepairWork 维修工单模型
type RepairWork struct {
	ID            string     `gorm:"type:uuid;primary_key" json:"id"`
	InspectionID  int64      `gorm:"not null;index" json:"inspection_id"` // 关联检测记录diag_id
	Title         string     `gorm:"not null;size:200" json:"title"`
	Description   *string    `json:"description"`
	Priority      string     `gorm:"not null;default:'medium';size:20" json:"priority"` // low/medium/high
	Status        string     `gorm:"not null;default:'planned';size:20" json:"status"`
	PlannedDate   *time.Time `json:"planned_date"`
	CompletedDate *time.Time `json:"completed_date"`
	AssignedTo    *string    `gorm:"size:100" json:"assigned_to"`
	Notes         *string    `json:"notes"`
	CreatedBy     string     `gorm:"not null;default:'system';size:100" json:"created_by"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate 创建前钩子
func (r *RepairWork) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedBy == "" {
		r.CreatedBy = "system"
	}
	return nil
}

// InspectionFilter 检测记录查询过滤条件
type InspectionFilter struct {
	Method      string `json:"method"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	DefectFound *bool  `json:"defect_found"`
	RiskLevel   string `json:"risk_level"`
	PipelineID  string `json:"pipeline_id"`
	ObjectType  string `json:"object_type"`
}

// ImportResult CSV导入结果
type ImportResult struct {
	Success      bool     `json:"success"`
	TotalRows    int      `json:"total_rows"`
	ImportedRows int      `json:"imported_rows"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}
