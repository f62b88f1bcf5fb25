package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/repository"
	"github.com/firasabed78/culinary--academy/pkg/mailer"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService 通知业务接口
// Notify* 系列为其它 Service 的内部调用入口，均为尽力而为：
// 失败只记录日志，不向主流程返回错误
type NotificationService interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, notificationID string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)

	NotifyEnrollmentCreated(ctx context.Context, studentID, enrollmentID, courseTitle string)
	NotifyEnrollmentStatusChanged(ctx context.Context, studentID, enrollmentID, status string)
	NotifyPaymentCompleted(ctx context.Context, studentID, paymentID string, amount float64)
	NotifyPaymentRefunded(ctx context.Context, studentID, paymentID string, amount float64)
	SendCourseStartReminders(ctx context.Context) error
}

type notificationService struct {
	repo   *repository.Repository
	mail   mailer.Mailer
	logger *zap.Logger
}

func NewNotificationService(repo *repository.Repository, mail mailer.Mailer, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		mail:   mail,
		logger: logger,
	}
}

// Create 管理员创建系统通知，可选同步发送邮件
func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	n := &model.Notification{
		UserID:     req.UserID,
		Title:      req.Title,
		Message:    req.Message,
		Type:       model.NotificationSystem,
		EntityID:   req.EntityID,
		EntityType: req.EntityType,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("创建通知失败", zap.Error(err))
		return nil, err
	}

	if req.SendEmail {
		s.sendMail(user.Email, req.Title, req.Message)
	}

	resp := toNotificationResponse(n)
	return &resp, nil
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, req)
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		resp = append(resp, toNotificationResponse(&notifications[i]))
	}
	return resp, total, nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.getOwned(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return s.repo.Notification.MarkRead(ctx, notificationID)
}

// MarkAllRead 单条 SQL 批量置读，返回受影响行数
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if _, err := s.getOwned(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.repo.Notification.Delete(ctx, notificationID)
}

// DeleteAll 单条 SQL 批量删除，返回受影响行数
func (s *notificationService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.DeleteAllByUser(ctx, userID)
}

func (s *notificationService) NotifyEnrollmentCreated(ctx context.Context, studentID, enrollmentID, courseTitle string) {
	entityType := "enrollment"
	s.create(ctx, &model.Notification{
		UserID:     studentID,
		Title:      "Enrollment received",
		Message:    fmt.Sprintf("Your enrollment for %q has been received and is pending approval.", courseTitle),
		Type:       model.NotificationEnrollment,
		EntityID:   &enrollmentID,
		EntityType: &entityType,
	}, true)
}

func (s *notificationService) NotifyEnrollmentStatusChanged(ctx context.Context, studentID, enrollmentID, status string) {
	entityType := "enrollment"
	s.create(ctx, &model.Notification{
		UserID:     studentID,
		Title:      "Enrollment status updated",
		Message:    fmt.Sprintf("Your enrollment status is now %q.", status),
		Type:       model.NotificationEnrollment,
		EntityID:   &enrollmentID,
		EntityType: &entityType,
	}, true)
}

func (s *notificationService) NotifyPaymentCompleted(ctx context.Context, studentID, paymentID string, amount float64) {
	entityType := "payment"
	s.create(ctx, &model.Notification{
		UserID:     studentID,
		Title:      "Payment received",
		Message:    fmt.Sprintf("Your payment of %.2f has been received. Thank you!", amount),
		Type:       model.NotificationPayment,
		EntityID:   &paymentID,
		EntityType: &entityType,
	}, true)
}

func (s *notificationService) NotifyPaymentRefunded(ctx context.Context, studentID, paymentID string, amount float64) {
	entityType := "payment"
	s.create(ctx, &model.Notification{
		UserID:     studentID,
		Title:      "Payment refunded",
		Message:    fmt.Sprintf("Your payment of %.2f has been refunded.", amount),
		Type:       model.NotificationPayment,
		EntityID:   &paymentID,
		EntityType: &entityType,
	}, true)
}

// SendCourseStartReminders 给明天开课课程中已批准且已缴费的学员发送提醒
// 由每日定时任务触发
func (s *notificationService) SendCourseStartReminders(ctx context.Context) error {
	tomorrow := time.Now().AddDate(0, 0, 1)
	courses, err := s.repo.Course.ListStartingOn(ctx, tomorrow)
	if err != nil {
		s.logger.Error("查询明日开课课程失败", zap.Error(err))
		return err
	}

	for i := range courses {
		course := &courses[i]
		enrollments, err := s.repo.Enrollment.ListByCourse(ctx, course.CourseID)
		if err != nil {
			s.logger.Error("查询课程报名失败", zap.Error(err), zap.String("course_id", course.CourseID))
			continue
		}

		entityType := "course"
		for j := range enrollments {
			e := &enrollments[j]
			if e.Status != model.EnrollmentApproved || e.PaymentStatus != model.PaymentStatusPaid {
				continue
			}
			s.create(ctx, &model.Notification{
				UserID:     e.StudentID,
				Title:      "Course starts tomorrow",
				Message:    fmt.Sprintf("Reminder: %q starts tomorrow.", course.Title),
				Type:       model.NotificationCourse,
				EntityID:   &course.CourseID,
				EntityType: &entityType,
			}, true)
		}
	}

	s.logger.Info("开课提醒任务完成", zap.Int("courses", len(courses)))
	return nil
}

// create 落库并尽力发邮件，失败只记录日志
func (s *notificationService) create(ctx context.Context, n *model.Notification, withMail bool) {
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("创建通知失败", zap.Error(err), zap.String("user_id", n.UserID))
		return
	}

	if !withMail {
		return
	}
	user, err := s.repo.User.GetByID(ctx, n.UserID)
	if err != nil {
		s.logger.Warn("查询通知收件人失败", zap.Error(err), zap.String("user_id", n.UserID))
		return
	}
	s.sendMail(user.Email, n.Title, n.Message)
}

func (s *notificationService) sendMail(to, subject, body string) {
	if s.mail == nil {
		return
	}
	if err := s.mail.Send(to, subject, body); err != nil {
		s.logger.Warn("发送邮件失败", zap.Error(err), zap.String("to", to))
	}
}

func (s *notificationService) getOwned(ctx context.Context, userID, notificationID string) (*model.Notification, error) {
	n, err := s.repo.Notification.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrForbidden
	}
	return n, nil
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:         n.NotificationID,
		Title:      n.Title,
		Message:    n.Message,
		Type:       n.Type,
		IsRead:     n.IsRead,
		EntityID:   n.EntityID,
		EntityType: n.EntityType,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
}
