package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/config"
	"github.com/firasabed78/culinary--academy/internal/api/handler"
	"github.com/firasabed78/culinary--academy/internal/api/middleware"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/pkg/jwt"
	"github.com/firasabed78/culinary--academy/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// 上传走 multipart，整体限制取上传上限加 1MB 余量
	r.Use(middleware.BodyLimit(cfg.Upload.MaxSize + 1<<20))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录注册限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 课程目录（公开浏览）
		v1.GET("/courses", h.Course.ListCourses)
		v1.GET("/courses/:id", h.Course.GetCourse)
		v1.GET("/schedules", h.Schedule.ListSchedules)
		v1.GET("/schedules/:id", h.Schedule.GetSchedule)

		// 支付网关回调（网关侧调用，无用户认证）
		v1.POST("/payments/webhook", h.Payment.HandleWebhook)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.POST("/auth/change-password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(model.RoleAdmin), h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)  // admin 或本人（Handler 层鉴权）
				users.PUT("/:id", h.User.UpdateUser)
				users.PUT("/:id/role", middleware.RoleAuth(model.RoleAdmin), h.User.AssignRole)
				users.POST("/:id/deactivate", middleware.RoleAuth(model.RoleAdmin), h.User.DeactivateUser)
				users.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.DeleteUser)
			}

			// 课程管理
			courses := authorized.Group("/courses")
			{
				courses.POST("", middleware.RoleAuth(model.RoleInstructor, model.RoleAdmin), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.RoleAuth(model.RoleInstructor, model.RoleAdmin), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Course.DeleteCourse)
				courses.GET("/:id/roster", middleware.RoleAuth(model.RoleInstructor, model.RoleAdmin), h.Export.ExportRoster)
				courses.GET("/:id/calendar.ics", h.Export.ExportCalendar)
			}

			// 报名模块
			enrollments := authorized.Group("/enrollments")
			{
				enrollments.POST("", h.Enrollment.CreateEnrollment)
				enrollments.GET("", h.Enrollment.ListEnrollments)
				enrollments.GET("/stats", middleware.RoleAuth(model.RoleInstructor, model.RoleAdmin), h.Enrollment.GetEnrollmentStats)
				enrollments.GET("/:id", h.Enrollment.GetEnrollment)
				enrollments.PUT("/:id", h.Enrollment.UpdateEnrollment)
				enrollments.DELETE("/:id", h.Enrollment.DeleteEnrollment)
				enrollments.POST("/:id/payment-intent", h.Payment.CreateIntent)
			}

			// 支付模块（管理员）
			payments := authorized.Group("/payments")
			payments.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				payments.POST("", h.Payment.CreatePayment)
				payments.GET("", h.Payment.ListPayments)
				payments.GET("/stats", h.Payment.GetPaymentStats)
				payments.GET("/:id", h.Payment.GetPayment)
				payments.POST("/:id/refund", h.Payment.RefundPayment)
			}

			// 时间表管理
			schedules := authorized.Group("/schedules")
			schedules.Use(middleware.RoleAuth(model.RoleInstructor, model.RoleAdmin))
			{
				schedules.POST("", h.Schedule.CreateSchedule)
				schedules.PUT("/:id", h.Schedule.UpdateSchedule)
				schedules.DELETE("/:id", h.Schedule.DeleteSchedule)
			}

			// 文档模块
			documents := authorized.Group("/documents")
			{
				documents.POST("", h.Document.UploadDocument)
				documents.GET("", h.Document.ListDocuments)
				documents.GET("/:id", h.Document.GetDocument)
				documents.GET("/:id/download", h.Document.DownloadDocument)
				documents.DELETE("/:id", h.Document.DeleteDocument)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.POST("", middleware.RoleAuth(model.RoleAdmin), h.Notification.CreateNotification)
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.GetUnreadCount)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.DELETE("/:id", h.Notification.DeleteNotification)
				notifications.DELETE("", h.Notification.DeleteAllNotifications)
			}
		}
	}

	return r
}
