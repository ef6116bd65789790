/*
 * @module service/inspection/inspection_service
 * @description 检测记录业务逻辑服务，创建时触发风险分类并写回ml_label/ml_confidence
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md, dev_docs/risk_engine.md
 * @stateFlow 记录创建 -> 观测映射 -> 风险分类 -> 标签写回 -> 高风险告警
 * @rules 分类引擎永不阻断记录入库；diag_id为业务主键，重复创建返回业务错误
 * @dependencies inspection-service/service/models, inspection-service/service/risk, gorm.io/gorm
 * @refs service/risk, service/notification
 */

package inspection

import (
	"errors"
	"fmt"

	"inspection-service/service/models"
	"inspection-service/service/risk"

	"gorm.io/gorm"
)

// Alerter 高风险告警发布接口，由notification包实现
type Alerter interface {
	PublishHighRisk(insp *models.Inspection, result risk.Result)
}

// Service 检测记录服务
type Service struct {
	db         *gorm.DB
	classifier *risk.Classifier
	alerter    Alerter // 可为nil，表示未启用告警
}

// NewService 创建检测记录服务实例
func NewService(db *gorm.DB, classifier *risk.Classifier, alerter Alerter) *Service {
	return &Service{db: db, classifier: classifier, alerter: alerter}
}

// validMethods 支持的检测方法集合
var validMethods = func() map[string]bool {
	m := make(map[string]bool, len(models.InspectionMethods))
	for _, method := range models.InspectionMethods {
		m[method] = true
	}
	return m
}()

// ObservationFrom 将检测记录映射为风险分类观测
func ObservationFrom(insp *models.Inspection) *risk.Observation {
	return &risk.Observation{
		DefectFound:  insp.DefectFound,
		QualityGrade: insp.QualityGrade,
		Method:       insp.Method,
		Param1:       insp.Param1,
		Param2:       insp.Param2,
		Param3:       insp.Param3,
		Temperature:  insp.Temperature,
		Humidity:     insp.Humidity,
	}
}

// CreateInspection 创建检测记录，缺陷记录自动分类打标
func (s *Service) CreateInspection(insp *models.Inspection) error {
	if !validMethods[insp.Method] {
		return fmt.Errorf("不支持的检测方法: %s", insp.Method)
	}

	var obj models.PipelineObject
	if err := s.db.Where("object_id = ?", insp.ObjectID).First(&obj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("检测对象%d不存在", insp.ObjectID)
		}
		return err
	}

	var existing models.Inspection
	if err := s.db.Where("diag_id = ?", insp.DiagID).First(&existing).Error; err == nil {
		return fmt.Errorf("检测记录%d已存在", insp.DiagID)
	}

	// 缺陷记录入库前完成风险打标
	if insp.DefectFound {
		result := s.classifier.Classify(ObservationFrom(insp))
		label := string(result.Level)
		insp.MLLabel = &label
		insp.MLConfidence = &result.Confidence

		if err := s.db.Create(insp).Error; err != nil {
			return err
		}
		if result.Level == risk.RiskHigh && s.alerter != nil {
			s.alerter.PublishHighRisk(insp, result)
		}
		return nil
	}

	return s.db.Create(insp).Error
}

// GetInspection 按业务编号获取检测记录（含检测对象）
func (s *Service) GetInspection(diagID int64) (*models.Inspection, error) {
	var insp models.Inspection
	err := s.db.Preload("Object").Where("diag_id = ?", diagID).First(&insp).Error
	if err != nil {
		return nil, err
	}
	return &insp, nil
}

// GetInspections 分页获取检测记录列表，支持多条件过滤
func (s *Service) GetInspections(filter *models.InspectionFilter, page, pageSize int) ([]models.Inspection, int64, error) {
	var inspections []models.Inspection
	var total int64

	query := s.db.Model(&models.Inspection{})
	if filter != nil {
		if filter.Method != "" {
			query = query.Where("method = ?", filter.Method)
		}
		if filter.DateFrom != "" {
			query = query.Where("date >= ?", filter.DateFrom)
		}
		if filter.DateTo != "" {
			query = query.Where("date <= ?", filter.DateTo)
		}
		if filter.DefectFound != nil {
			query = query.Where("defect_found = ?", *filter.DefectFound)
		}
		if filter.RiskLevel != "" {
			query = query.Where("ml_label = ?", filter.RiskLevel)
		}
		if filter.PipelineID != "" || filter.ObjectType != "" {
			sub := s.db.Model(&models.PipelineObject{}).Select("object_id")
			if filter.PipelineID != "" {
				sub = sub.Where("pipeline_id = ?", filter.PipelineID)
			}
			if filter.ObjectType != "" {
				sub = sub.Where("object_type = ?", filter.ObjectType)
			}
			query = query.Where("object_id IN (?)", sub)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	err := query.Order("date DESC, diag_id DESC").Offset(offset).Limit(pageSize).Find(&inspections).Error
	if err != nil {
		return nil, 0, err
	}
	return inspections, total, nil
}

// Reclassify 对单条检测记录重新分类并写回标签
func (s *Service) Reclassify(diagID int64) (*risk.Result, error) {
	var insp models.Inspection
	if err := s.db.Where("diag_id = ?", diagID).First(&insp).Error; err != nil {
		return nil, err
	}

	result := s.classifier.Classify(ObservationFrom(&insp))
	label := string(result.Level)
	err := s.db.Model(&insp).Updates(map[string]interface{}{
		"ml_label":      label,
		"ml_confidence": result.Confidence,
	}).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ReclassifyUnlabeled 批量补标：对缺陷已确认但尚无风险标签的记录重新分类
func (s *Service) ReclassifyUnlabeled(limit int) (int, error) {
	var pending []models.Inspection
	err := s.db.Where("defect_found = ? AND ml_label IS NULL", true).
		Order("diag_id").Limit(limit).Find(&pending).Error
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range pending {
		if _, err := s.Reclassify(pending[i].DiagID); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Explain 获取检测记录的风险解释
func (s *Service) Explain(diagID int64) (*risk.Explanation, error) {
	var insp models.Inspection
	if err := s.db.Where("diag_id = ?", diagID).First(&insp).Error; err != nil {
		return nil, err
	}
	explanation := s.classifier.Explain(ObservationFrom(&insp))
	return &explanation, nil
}

// DeleteInspection 删除检测记录
func (s *Service) DeleteInspection(diagID int64) error {
	result := s.db.Where("diag_id = ?", diagID).Delete(&models.Inspection{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
