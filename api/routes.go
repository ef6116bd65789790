/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package api

import (
	"inspection-service/api/controllers"
	authmw "inspection-service/api/middleware"
	"inspection-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 会话鉴权中间件
	sessionAuth := authmw.NewSessionAuthMiddleware(service.GlobalAuthService)
	r.Use(sessionAuth.Middleware)

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 认证与用户管理
	r.Route("/auth", func(r chi.Router) {
		authController := controllers.NewAuthController()
		r.Post("/register", authController.Register)
		r.Post("/login", authController.Login)
		r.Post("/logout", authController.Logout)
		r.Get("/me", authController.Me)
		r.Put("/me/password", authController.ChangePassword)
		r.Get("/users", authController.ListUsers)
		r.Put("/users/{user_id}/role", authController.UpdateUserRole)
	})

	// 风险分类引擎
	r.Route("/risk", func(r chi.Router) {
		riskController := controllers.NewRiskController()
		r.Post("/classify", riskController.Classify)
		r.Post("/explain", riskController.Explain)
		r.Get("/model", riskController.ModelStatus)
	})

	// 管线管理
	r.Route("/pipelines", func(r chi.Router) {
		objectController := controllers.NewObjectController()
		r.Get("/", objectController.GetPipelines)
		r.Post("/", objectController.CreatePipeline)
	})

	// 管线对象管理
	r.Route("/objects", func(r chi.Router) {
		objectController := controllers.NewObjectController()
		r.Get("/", objectController.GetObjects)
		r.Post("/", objectController.CreateObject)
		r.Get("/{object_id}", objectController.GetObject)
		r.Delete("/{object_id}", objectController.DeleteObject)
	})

	// 检测记录管理
	r.Route("/inspections", func(r chi.Router) {
		inspectionController := controllers.NewInspectionController()
		r.Get("/", inspectionController.GetInspections)
		r.Post("/", inspectionController.CreateInspection)
		r.Get("/{diag_id}", inspectionController.GetInspection)
		r.Delete("/{diag_id}", inspectionController.DeleteInspection)
		r.Post("/{diag_id}/reclassify", inspectionController.Reclassify)
		r.Get("/{diag_id}/explanation", inspectionController.GetExplanation)
	})

	// 维修工单管理
	r.Route("/repair-works", func(r chi.Router) {
		repairWorkController := controllers.NewRepairWorkController()
		r.Get("/", repairWorkController.GetRepairWorks)
		r.Post("/", repairWorkController.CreateRepairWork)
		r.Put("/{id}/status", repairWorkController.UpdateRepairWorkStatus)
	})

	// 数据导入
	r.Route("/import", func(r chi.Router) {
		importController := controllers.NewImportController()
		r.Post("/csv", importController.ImportCSV)
	})

	// 统计看板
	r.Route("/dashboard", func(r chi.Router) {
		dashboardController := controllers.NewDashboardController()
		r.Get("/stats", dashboardController.GetStats)
	})
}
