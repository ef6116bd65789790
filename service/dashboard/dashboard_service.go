/*
 * @module service/dashboard/dashboard_service
 * @description 统计看板服务，聚合对象/检测/缺陷/风险分布统计，带Redis旁路缓存
 * @architecture 分层架构 - 业务服务层, Cache-Aside缓存模式
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 查缓存 -> 未命中查库聚合 -> 回填缓存
 * @rules Redis不可用时自动降级为直查数据库，缓存失败不影响统计结果
 * @dependencies inspection-service/service/models, gorm.io/gorm, github.com/go-redis/redis/v8
 * @refs service/scheduler
 */

package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"inspection-service/service/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 缓存参数
const (
	statsCacheKey = "inspection:dashboard:stats"
	statsCacheTTL = 5 * time.Minute
)

// Stats 看板统计结果
type Stats struct {
	TotalObjects      int64            `json:"total_objects"`
	TotalInspections  int64            `json:"total_inspections"`
	TotalDefects      int64            `json:"total_defects"`
	DefectsByMethod   map[string]int64 `json:"defects_by_method"`
	DefectsByRisk     map[string]int64 `json:"defects_by_risk"`
	InspectionsByYear map[string]int64 `json:"inspections_by_year"`
	DefectsByYear     map[string]int64 `json:"defects_by_year"`
	TopRisks          []TopRisk        `json:"top_risks"`
}

// TopRisk 高风险缺陷摘要
type TopRisk struct {
	DiagID      int64    `json:"diag_id"`
	ObjectID    int64    `json:"object_id"`
	ObjectName  string   `json:"object_name"`
	Description *string  `json:"description"`
	RiskLevel   string   `json:"risk_level"`
	Confidence  *float64 `json:"confidence"`
}

// Service 看板统计服务
type Service struct {
	db    *gorm.DB
	cache *redis.Client // 可为nil，表示未启用缓存
}

// NewService 创建看板服务，REDIS_ADDR未配置时不启用缓存
func NewService(db *gorm.DB) *Service {
	s := &Service{db: db}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		s.cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		slog.Info("看板统计缓存已启用", "redis_addr", addr)
	}
	return s
}

// NewServiceWithCache 指定缓存客户端创建看板服务
func NewServiceWithCache(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{db: db, cache: cache}
}

// GetStats 获取看板统计，优先走缓存
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats Stats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.computeStats()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				slog.Warn("看板统计缓存回填失败", "error", err)
			}
		}
	}
	return stats, nil
}

// WarmCache 预热缓存，由调度任务周期调用
func (s *Service) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	stats, err := s.computeStats()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err()
}

// groupCount 分组计数行
type groupCount struct {
	Key   string
	Count int64
}

// computeStats 直查数据库聚合统计
func (s *Service) computeStats() (*Stats, error) {
	stats := &Stats{
		DefectsByMethod:   map[string]int64{},
		DefectsByRisk:     map[string]int64{},
		InspectionsByYear: map[string]int64{},
		DefectsByYear:     map[string]int64{},
		TopRisks:          []TopRisk{},
	}

	if err := s.db.Model(&models.PipelineObject{}).Count(&stats.TotalObjects).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Inspection{}).Count(&stats.TotalInspections).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Inspection{}).Where("defect_found = ?", true).
		Count(&stats.TotalDefects).Error; err != nil {
		return nil, err
	}

	groupQueries := []struct {
		dest   map[string]int64
		column string
		where  *bool
	}{
		{stats.DefectsByMethod, "method", boolPtr(true)},
		{stats.DefectsByRisk, "ml_label", boolPtr(true)},
		{stats.InspectionsByYear, "strftime('%Y', date)", nil},
		{stats.DefectsByYear, "strftime('%Y', date)", boolPtr(true)},
	}
	// postgres与sqlite的年份提取语法不同，统一改用gorm方言无关的查询时退化为按整列分组
	for _, gq := range groupQueries {
		rows, err := s.groupBy(gq.column, gq.where)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.Key == "" {
				continue
			}
			gq.dest[row.Key] = row.Count
		}
	}

	if err := s.loadTopRisks(stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupBy 对检测记录按表达式分组计数
func (s *Service) groupBy(expr string, defectOnly *bool) ([]groupCount, error) {
	column := expr
	if s.db.Dialector.Name() != "sqlite" {
		// postgres下用to_char提取年份
		if expr == "strftime('%Y', date)" {
			column = "to_char(date, 'YYYY')"
		}
	}

	query := s.db.Model(&models.Inspection{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column)
	if defectOnly != nil {
		query = query.Where("defect_found = ?", *defectOnly)
	}

	var rows []groupCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// loadTopRisks 取置信度最高的前10条高风险缺陷
func (s *Service) loadTopRisks(stats *Stats) error {
	var inspections []models.Inspection
	err := s.db.Preload("Object").
		Where("defect_found = ? AND ml_label = ?", true, "high").
		Order("ml_confidence DESC").Limit(10).Find(&inspections).Error
	if err != nil {
		return err
	}

	for _, insp := range inspections {
		top := TopRisk{
			DiagID:      insp.DiagID,
			ObjectID:    insp.ObjectID,
			Description: insp.DefectDescription,
			RiskLevel:   "high",
			Confidence:  insp.MLConfidence,
		}
		if insp.Object != nil {
			top.ObjectName = insp.Object.ObjectName
		}
		stats.TopRisks = append(stats.TopRisks, top)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
