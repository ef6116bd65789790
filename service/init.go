/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、模型迁移与各业务服务单例的装配
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务；分类门面全局唯一
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs dev_docs/model.md, service/risk
 */

package service

import (
	"fmt"
	"log"
	"os"

	"inspection-service/service/auth"
	"inspection-service/service/dashboard"
	"inspection-service/service/datasource"
	"inspection-service/service/importer"
	"inspection-service/service/inspection"
	"inspection-service/service/models"
	"inspection-service/service/notification"
	"inspection-service/service/pipeline"
	"inspection-service/service/risk"
	"inspection-service/service/scheduler"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB *gorm.DB

	GlobalClassifier        *risk.Classifier
	GlobalPipelineService   *pipeline.Service
	GlobalInspectionService *inspection.Service
	GlobalImportService     *importer.Service
	GlobalDashboardService  *dashboard.Service
	GlobalAuthService       *auth.Service
	GlobalAlertPublisher    *notification.AlertPublisher
	GlobalSchedulerService  *scheduler.Service
	GlobalMQTTIngest        *datasource.MQTTIngest
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
	startBackgroundServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "inspection")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// runMigrations 执行模型自动迁移
func runMigrations() {
	err := DB.AutoMigrate(
		&models.Pipeline{},
		&models.PipelineObject{},
		&models.Inspection{},
		&models.RepairWork{},
		&models.User{},
	)
	if err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库迁移完成")
}

// initServices 装配业务服务单例
func initServices() {
	GlobalClassifier = risk.NewClassifier()
	GlobalAlertPublisher = notification.NewAlertPublisher()

	GlobalPipelineService = pipeline.NewService(DB)
	if GlobalAlertPublisher != nil {
		GlobalInspectionService = inspection.NewService(DB, GlobalClassifier, GlobalAlertPublisher)
	} else {
		GlobalInspectionService = inspection.NewService(DB, GlobalClassifier, nil)
	}
	GlobalImportService = importer.NewService(GlobalPipelineService, GlobalInspectionService)
	GlobalDashboardService = dashboard.NewService(DB)
	GlobalAuthService = auth.NewService(DB)
	GlobalSchedulerService = scheduler.NewService(GlobalInspectionService, GlobalDashboardService)
}

// startBackgroundServices 启动后台接入与调度
func startBackgroundServices() {
	if err := GlobalSchedulerService.Start(); err != nil {
		log.Fatalf("定时任务调度器启动失败: %v", err)
	}

	ingest, err := datasource.NewMQTTIngest(GlobalInspectionService)
	if err != nil {
		log.Fatalf("MQTT接入器初始化失败: %v", err)
	}
	if ingest != nil {
		GlobalMQTTIngest = ingest
		if err := ingest.Start(); err != nil {
			// MQTT不可达不阻断HTTP服务，依赖自动重连
			log.Printf("MQTT接入启动失败: %v", err)
		}
	}
}

// getEnvWithDefault 读取环境变量，未设置时返回缺省值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
