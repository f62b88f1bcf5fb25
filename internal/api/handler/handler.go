package handler

import "github.com/firasabed78/culinary--academy/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Course       *CourseHandler
	Enrollment   *EnrollmentHandler
	Payment      *PaymentHandler
	Schedule     *ScheduleHandler
	Document     *DocumentHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Course:       NewCourseHandler(svc.Course),
		Enrollment:   NewEnrollmentHandler(svc.Enrollment),
		Payment:      NewPaymentHandler(svc.Payment),
		Schedule:     NewScheduleHandler(svc.Schedule),
		Document:     NewDocumentHandler(svc.Document),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}
