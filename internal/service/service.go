package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/config"
	"github.com/firasabed78/culinary--academy/internal/repository"
	"github.com/firasabed78/culinary--academy/pkg/jwt"
	"github.com/firasabed78/culinary--academy/pkg/mailer"
	"github.com/firasabed78/culinary--academy/pkg/payment"
	"github.com/firasabed78/culinary--academy/pkg/redis"
	"github.com/firasabed78/culinary--academy/pkg/storage"
)

// ErrForbidden 当前用户无权执行该操作
var ErrForbidden = errors.New("operation not permitted")

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Course       CourseService
	Enrollment   EnrollmentService
	Payment      PaymentService
	Schedule     ScheduleService
	Document     DocumentService
	Notification NotificationService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	gateway payment.Gateway,
	mail mailer.Mailer,
	store storage.Storage,
	logger *zap.Logger,
) *Service {
	notificationSvc := NewNotificationService(repo, mail, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Course:       NewCourseService(repo, logger),
		Enrollment:   NewEnrollmentService(repo, notificationSvc, logger),
		Payment:      NewPaymentService(cfg, repo, gateway, notificationSvc, logger),
		Schedule:     NewScheduleService(repo, logger),
		Document:     NewDocumentService(cfg, repo, store, logger),
		Notification: notificationSvc,
		Export:       NewExportService(repo, logger),
	}
}
