/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"inspection-service/service/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Pipeline{},
		&models.PipelineObject{},
		&models.Inspection{},
		&models.RepairWork{},
		&models.User{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"pipelines",
		"pipeline_objects",
		"inspections",
		"repair_works",
		"users",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// PipelineOption 管线选项函数类型
type PipelineOption func(*models.Pipeline)

// CreatePipeline 创建测试管线
func (f *TestDataFactory) CreatePipeline(opts ...PipelineOption) *models.Pipeline {
	pipeline := &models.Pipeline{
		PipelineID:  fmt.Sprintf("PL-%d", nextSeq()),
		Name:        "测试管线",
		Description: "这是一条测试管线",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(pipeline)
	}

	if err := f.DB.Create(pipeline).Error; err != nil {
		panic(fmt.Sprintf("failed to create test pipeline: %v", err))
	}
	return pipeline
}

// ObjectOption 检测对象选项函数类型
type ObjectOption func(*models.PipelineObject)

// CreateObject 创建测试检测对象
func (f *TestDataFactory) CreateObject(pipelineID string, opts ...ObjectOption) *models.PipelineObject {
	object := &models.PipelineObject{
		ObjectID:   nextSeq(),
		ObjectName: "测试管段",
		ObjectType: models.ObjectTypePipelineSection,
		PipelineID: pipelineID,
		Lat:        55.75,
		Lon:        37.61,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(object)
	}

	if err := f.DB.Create(object).Error; err != nil {
		panic(fmt.Sprintf("failed to create test object: %v", err))
	}
	return object
}

// InspectionOption 检测记录选项函数类型
type InspectionOption func(*models.Inspection)

// CreateInspection 创建测试检测记录
func (f *TestDataFactory) CreateInspection(objectID int64, opts ...InspectionOption) *models.Inspection {
	inspection := &models.Inspection{
		DiagID:      nextSeq(),
		ObjectID:    objectID,
		Method:      "VIK",
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DefectFound: false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(inspection)
	}

	if err := f.DB.Create(inspection).Error; err != nil {
		panic(fmt.Sprintf("failed to create test inspection: %v", err))
	}
	return inspection
}

// WithDefect 标记检测记录存在缺陷
func WithDefect(grade string, depth, length, width float64) InspectionOption {
	return func(i *models.Inspection) {
		i.DefectFound = true
		i.QualityGrade = &grade
		i.Param1 = &depth
		i.Param2 = &length
		i.Param3 = &width
	}
}

// WithMethod 指定检测方法
func WithMethod(method string) InspectionOption {
	return func(i *models.Inspection) {
		i.Method = method
	}
}

// RepairWorkOption 维修工单选项函数类型
type RepairWorkOption func(*models.RepairWork)

// CreateRepairWork 创建测试维修工单
func (f *TestDataFactory) CreateRepairWork(inspectionID int64, opts ...RepairWorkOption) *models.RepairWork {
	work := &models.RepairWork{
		InspectionID: inspectionID,
		Title:        "测试维修工单",
		Priority:     "medium",
		Status:       models.WorkStatusPlanned,
		CreatedBy:    "test",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(work)
	}

	if err := f.DB.Create(work).Error; err != nil {
		panic(fmt.Sprintf("failed to create test repair work: %v", err))
	}
	return work
}

// UserOption 用户选项函数类型
type UserOption func(*models.User)

// CreateUser 创建测试用户
func (f *TestDataFactory) CreateUser(opts ...UserOption) *models.User {
	seq := nextSeq()
	user := &models.User{
		Username:     fmt.Sprintf("user_%d", seq),
		Email:        fmt.Sprintf("user_%d@example.com", seq),
		PasswordHash: "test-hash",
		Role:         models.RoleGuest,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(user)
	}

	if err := f.DB.Create(user).Error; err != nil {
		panic(fmt.Sprintf("failed to create test user: %v", err))
	}
	return user
}

var seqCounter int64

// nextSeq 生成递增的业务主键，保证同一进程内唯一
func nextSeq() int64 {
	return 100000 + atomic.AddInt64(&seqCounter, 1)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// AssertJSONStatus 断言JSON响应的业务状态码
func (h *HTTPTestHelper) AssertJSONStatus(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) map[string]interface{} {
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "response should be valid JSON")
	assert.Equal(t, float64(expectedStatus), resp["status"])
	return resp
}
