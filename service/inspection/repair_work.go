/*
 * @module service/inspection/repair_work
 * @description 维修工单业务逻辑，跟踪高风险缺陷的处置进度
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow planned -> in_progress -> completed|cancelled
 * @rules 工单必须挂接已存在的检测记录，完成时自动补记完成日期
 * @dependencies inspection-service/service/models, gorm.io/gorm
 * @refs inspection_service.go
 */

package inspection

import (
	"errors"
	"fmt"
	"time"

	"inspection-service/service/models"

	"gorm.io/gorm"
)

// validWorkStatuses 工单状态枚举
var validWorkStatuses = map[string]bool{
	models.WorkStatusPlanned:    true,
	models.WorkStatusInProgress: true,
	models.WorkStatusCompleted:  true,
	models.WorkStatusCancelled:  true,
}

// CreateRepairWork 创建维修工单
func (s *Service) CreateRepairWork(work *models.RepairWork) error {
	var insp models.Inspection
	if err := s.db.Where("diag_id = ?", work.InspectionID).First(&insp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("检测记录%d不存在", work.InspectionID)
		}
		return err
	}
	if work.Status == "" {
		work.Status = models.WorkStatusPlanned
	}
	return s.db.Create(work).Error
}

// GetRepairWorks 分页获取维修工单，支持按状态过滤
func (s *Service) GetRepairWorks(page, pageSize int, status string) ([]models.RepairWork, int64, error) {
	var works []models.RepairWork
	var total int64

	query := s.db.Model(&models.RepairWork{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&works).Error; err != nil {
		return nil, 0, err
	}
	return works, total, nil
}

// UpdateRepairWorkStatus 更新工单状态，完成时补记完成日期
func (s *Service) UpdateRepairWorkStatus(id, status string) (*models.RepairWork, error) {
	if !validWorkStatuses[status] {
		return nil, fmt.Errorf("无效的工单状态: %s", status)
	}

	var work models.RepairWork
	if err := s.db.First(&work, "id = ?", id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if status == models.WorkStatusCompleted && work.CompletedDate == nil {
		now := time.Now()
		updates["completed_date"] = &now
	}
	if err := s.db.Model(&work).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &work, nil
}
