package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/handler"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/middleware"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/config"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/logger"
	corsmiddleware "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/middleware/cors"
	reqidmiddleware "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/middleware/requestid"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type routeHandlers struct {
	auth         *handler.AuthHandler
	attendance   *handler.AttendanceHandler
	exams        *handler.ExamHandler
	marks        *handler.MarkHandler
	finance      *handler.FinanceHandler
	scholarships *handler.ScholarshipHandler
	timetable    *handler.TimetableHandler
	leaves       *handler.LeaveHandler
	hostels      *handler.HostelHandler
	transport    *handler.TransportHandler
	students     *handler.StudentHandler
	downloads    *handler.DownloadHandler
	metrics      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens middleware.TokenValidator, audit middleware.AuditWriter, loginLimiter *middleware.TokenBucket, hub *realtime.Hub, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Realtime.Enabled {
		r.GET("/ws", middleware.JWTQuery(tokens), hub.ServeWS)
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", loginLimiter.Middleware(), h.auth.Login)
	api.GET("/downloads/:token", h.downloads.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	admin := middleware.RequireRoles(models.RoleAdmin)

	secured.GET("/auth/me", h.auth.Me)
	secured.GET("/audit-logs", admin, h.auth.AuditLogs)

	attendance := secured.Group("/attendance")
	attendance.POST("", staff, h.attendance.Mark)
	attendance.POST("/bulk", staff, h.attendance.BulkMark)
	attendance.GET("", h.attendance.List)
	attendance.GET("/summary/:userId", middleware.RequireRolesOrSelf("userId", models.RoleAdmin, models.RoleStaff), h.attendance.Summary)
	attendance.GET("/download", staff, middleware.Audit(audit, models.AuditActionExport, models.AuditResourceAttendance), h.attendance.Download)
	attendance.DELETE("/:id", admin, h.attendance.Delete)

	exams := secured.Group("/exams")
	exams.POST("", staff, h.exams.Create)
	exams.GET("", h.exams.List)
	exams.GET("/:id", h.exams.Get)
	exams.PUT("/:id", staff, h.exams.Update)
	exams.PATCH("/:id/status", staff, h.exams.UpdateStatus)
	exams.DELETE("/:id", admin, h.exams.Delete)
	exams.GET("/:id/marks", staff, h.marks.ListByExam)
	exams.GET("/:id/hall-tickets/:studentId", middleware.Audit(audit, models.AuditActionExport, models.AuditResourceHallTicket), h.exams.HallTicket)

	marks := secured.Group("/marks", staff)
	marks.POST("", h.marks.Record)
	marks.POST("/bulk", h.marks.BulkRecord)

	students := secured.Group("/students")
	students.GET("", staff, h.students.List)
	students.GET("/:id", h.students.Get)
	students.GET("/:id/marks", h.marks.ListByStudent)
	secured.GET("/classes/:className/sections/:section/students", staff, h.students.Roster)

	finance := secured.Group("/finance")
	finance.POST("/fees", staff, h.finance.AssignFee)
	finance.POST("/payments", staff, h.finance.RecordPayment)
	finance.GET("", staff, h.finance.List)
	finance.GET("/:studentId/:academicYear", h.finance.Get)

	scholarships := secured.Group("/scholarships")
	scholarships.POST("", h.scholarships.Apply)
	scholarships.GET("", h.scholarships.List)
	scholarships.GET("/:id", h.scholarships.Get)
	scholarships.POST("/bulk-verify", staff, h.scholarships.BulkVerify)
	scholarships.POST("/:id/verify", staff, h.scholarships.Verify)
	scholarships.POST("/:id/reject", staff, h.scholarships.Reject)
	scholarships.POST("/:id/approve", admin, h.scholarships.Approve)
	scholarships.POST("/:id/revoke", admin, h.scholarships.Revoke)

	timetable := secured.Group("/timetable")
	timetable.PUT("", staff, h.timetable.Upsert)
	timetable.DELETE("/:id", staff, h.timetable.Delete)
	timetable.GET("/classes/:className/:section", h.timetable.Grid)
	timetable.GET("/teachers/:teacher", h.timetable.TeacherSchedule)

	leaves := secured.Group("/leave-requests")
	leaves.POST("", h.leaves.Create)
	leaves.GET("", h.leaves.List)
	leaves.GET("/:id", h.leaves.Get)
	leaves.POST("/:id/review", staff, h.leaves.Review)
	leaves.POST("/:id/read", h.leaves.MarkRead)
	leaves.DELETE("/:id", h.leaves.Cancel)

	hostels := secured.Group("/hostels")
	hostels.GET("", h.hostels.List)
	hostels.GET("/:id", h.hostels.Get)
	hostels.POST("", admin, h.hostels.Create)
	hostels.PUT("/:id", admin, h.hostels.Update)
	hostels.DELETE("/:id", admin, h.hostels.Delete)
	hostels.GET("/:id/allocations", staff, h.hostels.Allocations)
	hostels.POST("/:id/allocations", staff, h.hostels.Allocate)
	secured.DELETE("/hostel-allocations/:studentId", staff, h.hostels.Vacate)

	transport := secured.Group("/transport")
	transport.GET("/routes", h.transport.List)
	transport.GET("/routes/:id", h.transport.Get)
	transport.POST("/routes", admin, h.transport.Create)
	transport.PUT("/routes/:id", admin, h.transport.Update)
	transport.DELETE("/routes/:id", admin, h.transport.Delete)
	transport.GET("/routes/:id/assignments", staff, h.transport.Assignments)
	transport.POST("/routes/:id/assignments", staff, h.transport.Assign)
	transport.DELETE("/assignments/:studentId", staff, h.transport.Unassign)

	return r
}
