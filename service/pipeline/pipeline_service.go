/*
 * @module service/pipeline/pipeline_service
 * @description 管线与检测对象业务逻辑服务，提供CRUD操作与导入侧的按需建档
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 管线建档 -> 检测对象挂接 -> 检测记录关联
 * @rules pipeline_id与object_id为业务主键，重复创建返回业务错误
 * @dependencies inspection-service/service/models, gorm.io/gorm
 * @refs dev_docs/model.md
 */

package pipeline

import (
	"errors"
	"fmt"

	"inspection-service/service/models"

	"gorm.io/gorm"
)

// Service 管线与检测对象服务
type Service struct {
	db *gorm.DB
}

// NewService 创建管线服务实例
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePipeline 创建管线
func (s *Service) CreatePipeline(p *models.Pipeline) error {
	var existing models.Pipeline
	if err := s.db.Where("pipeline_id = ?", p.PipelineID).First(&existing).Error; err == nil {
		return errors.New("管线编号已存在")
	}
	return s.db.Create(p).Error
}

// GetPipeline 按业务编号获取管线
func (s *Service) GetPipeline(pipelineID string) (*models.Pipeline, error) {
	var p models.Pipeline
	if err := s.db.Where("pipeline_id = ?", pipelineID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPipelines 分页获取管线列表
func (s *Service) GetPipelines(page, pageSize int) ([]models.Pipeline, int64, error) {
	var pipelines []models.Pipeline
	var total int64

	if err := s.db.Model(&models.Pipeline{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := s.db.Order("pipeline_id").Offset(offset).Limit(pageSize).Find(&pipelines).Error; err != nil {
		return nil, 0, err
	}
	return pipelines, total, nil
}

// GetOrCreatePipeline 导入侧按需建档：不存在时自动创建占位管线
func (s *Service) GetOrCreatePipeline(pipelineID string) (*models.Pipeline, error) {
	p, err := s.GetPipeline(pipelineID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Pipeline{
		PipelineID: pipelineID,
		Name:       fmt.Sprintf("Pipeline %s", pipelineID),
	}
	if err := s.db.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// CreateObject 创建检测对象
func (s *Service) CreateObject(o *models.PipelineObject) error {
	switch o.ObjectType {
	case models.ObjectTypeCrane, models.ObjectTypeCompressor, models.ObjectTypePipelineSection:
	default:
		return errors.New("无效的检测对象类型")
	}

	var existing models.PipelineObject
	if err := s.db.Where("object_id = ?", o.ObjectID).First(&existing).Error; err == nil {
		return errors.New("检测对象编号已存在")
	}
	return s.db.Create(o).Error
}

// GetObject 按业务编号获取检测对象
func (s *Service) GetObject(objectID int64) (*models.PipelineObject, error) {
	var o models.PipelineObject
	if err := s.db.Where("object_id = ?", objectID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetObjectWithInspections 获取检测对象及其全部检测记录
func (s *Service) GetObjectWithInspections(objectID int64) (*models.PipelineObject, error) {
	var o models.PipelineObject
	err := s.db.Preload("Inspections").Where("object_id = ?", objectID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetObjects 分页获取检测对象列表，支持按管线和类型过滤
func (s *Service) GetObjects(page, pageSize int, pipelineID, objectType string) ([]models.PipelineObject, int64, error) {
	var objects []models.PipelineObject
	var total int64

	query := s.db.Model(&models.PipelineObject{})
	if pipelineID != "" {
		query = query.Where("pipeline_id = ?", pipelineID)
	}
	if objectType != "" {
		query = query.Where("object_type = ?", objectType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Order("object_id").Offset(offset).Limit(pageSize).Find(&objects).Error; err != nil {
		return nil, 0, err
	}
	return objects, total, nil
}

// DeleteObject 删除检测对象
func (s *Service) DeleteObject(objectID int64) error {
	result := s.db.Where("object_id = ?", objectID).Delete(&models.PipelineObject{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
