/*
 * @module service/scheduler/scheduler_service
 * @description 定时任务调度器，周期执行风险标签补标与看板缓存预热
 * @architecture 基于cron库的调度器模式
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 注册任务 -> 启动调度 -> 周期执行 -> 停止调度
 * @rules 任务执行失败只记日志，等待下一周期；cron表达式含秒位
 * @dependencies github.com/robfig/cron/v3
 * @refs service/inspection, service/dashboard
 */

package scheduler

import (
	"context"
	"log/slog"
	"os"

	"inspection-service/service/dashboard"
	"inspection-service/service/inspection"

	"github.com/robfig/cron/v3"
)

// 缺省调度参数（含秒位）
const (
	defaultReclassifySpec = "0 */10 * * * *" // 每10分钟补标一次
	defaultWarmCacheSpec  = "30 0 * * * *"   // 每小时预热看板缓存
	reclassifyBatchSize   = 500
)

// Service 调度器服务
type Service struct {
	cron              *cron.Cron
	inspectionService *inspection.Service
	dashboardService  *dashboard.Service
}

// NewService 创建调度器服务
func NewService(inspectionService *inspection.Service, dashboardService *dashboard.Service) *Service {
	return &Service{
		cron:              cron.New(cron.WithSeconds()),
		inspectionService: inspectionService,
		dashboardService:  dashboardService,
	}
}

// Start 注册并启动全部定时任务
func (s *Service) Start() error {
	reclassifySpec := envOr("RECLASSIFY_CRON", defaultReclassifySpec)
	if _, err := s.cron.AddFunc(reclassifySpec, s.runReclassify); err != nil {
		return err
	}

	warmSpec := envOr("DASHBOARD_WARM_CRON", defaultWarmCacheSpec)
	if _, err := s.cron.AddFunc(warmSpec, s.runWarmCache); err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("定时任务调度器已启动", "reclassify_cron", reclassifySpec, "warm_cron", warmSpec)
	return nil
}

// Stop 停止调度，等待在途任务结束
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("定时任务调度器已停止")
}

// runReclassify 周期补标任务
func (s *Service) runReclassify() {
	count, err := s.inspectionService.ReclassifyUnlabeled(reclassifyBatchSize)
	if err != nil {
		slog.Error("风险标签补标任务失败", "processed", count, "error", err)
		return
	}
	if count > 0 {
		slog.Info("风险标签补标任务完成", "processed", count)
	}
}

// runWarmCache 周期缓存预热任务
func (s *Service) runWarmCache() {
	if err := s.dashboardService.WarmCache(context.Background()); err != nil {
		slog.Error("看板缓存预热失败", "error", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
