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
	"github.com/firasabed78/culinary--academy/pkg/metrics"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrCourseInactive     = errors.New("cannot enroll in inactive course")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
	ErrCourseFull         = errors.New("course has reached maximum capacity")
	ErrInvalidTransition  = errors.New("invalid enrollment status transition")
)

// 状态机：pending → approved | rejected；approved → completed | rejected（取消）
// rejected 与 completed 为终态
var enrollmentTransitions = map[string][]string{
	model.EnrollmentPending:  {model.EnrollmentApproved, model.EnrollmentRejected},
	model.EnrollmentApproved: {model.EnrollmentCompleted, model.EnrollmentRejected},
}

// EnrollmentService 报名业务接口
type EnrollmentService interface {
	Create(ctx context.Context, actorID, actorRole string, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	GetByID(ctx context.Context, actorID, actorRole, enrollmentID string) (*dto.EnrollmentResponse, error)
	List(ctx context.Context, actorID, actorRole string, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error)
	Update(ctx context.Context, actorID, actorRole, enrollmentID string, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	Delete(ctx context.Context, actorID, actorRole, enrollmentID string) error
	Stats(ctx context.Context) (*dto.EnrollmentStatsResponse, error)
}

type enrollmentService struct {
	repo            *repository.Repository
	notificationSvc NotificationService
	logger          *zap.Logger
}

func NewEnrollmentService(repo *repository.Repository, notificationSvc NotificationService, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{
		repo:            repo,
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

// Create 创建报名，按顺序校验：课程存在 → 课程激活 → 无重复报名 → 未满员
func (s *enrollmentService) Create(ctx context.Context, actorID, actorRole string, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	// 学员只能为自己报名；管理员可代报
	studentID := actorID
	if req.StudentID != nil {
		if actorRole != model.RoleAdmin && *req.StudentID != actorID {
			return nil, ErrForbidden
		}
		studentID = *req.StudentID
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.IncrementEnrollment("course_not_found")
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if !course.IsActive {
		metrics.IncrementEnrollment("course_inactive")
		return nil, ErrCourseInactive
	}

	if _, err := s.repo.Enrollment.GetByStudentAndCourse(ctx, studentID, req.CourseID); err == nil {
		metrics.IncrementEnrollment("duplicate")
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询报名记录失败", zap.Error(err))
		return nil, err
	}

	// 占位数 = pending + approved；rejected/completed 不占位
	active, err := s.repo.Enrollment.CountActiveByCourse(ctx, req.CourseID)
	if err != nil {
		s.logger.Error("统计课程报名数失败", zap.Error(err))
		return nil, err
	}
	if active >= int64(course.Capacity) {
		metrics.IncrementEnrollment("course_full")
		return nil, ErrCourseFull
	}

	enrollment := &model.Enrollment{
		StudentID:      studentID,
		CourseID:       req.CourseID,
		EnrollmentDate: time.Now(),
		Status:         model.EnrollmentPending,
		PaymentStatus:  model.PaymentStatusPending,
		Notes:          req.Notes,
	}
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		s.logger.Error("创建报名失败", zap.Error(err))
		return nil, err
	}
	metrics.IncrementEnrollment("created")

	s.logger.Info("报名创建成功",
		zap.String("enrollment_id", enrollment.EnrollmentID),
		zap.String("student_id", studentID),
		zap.String("course_id", req.CourseID))

	// 报名确认通知，失败不影响主流程
	s.notificationSvc.NotifyEnrollmentCreated(ctx, studentID, enrollment.EnrollmentID, course.Title)

	return s.getResponse(ctx, enrollment.EnrollmentID)
}

func (s *enrollmentService) GetByID(ctx context.Context, actorID, actorRole, enrollmentID string) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetWithRelations(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询报名失败", zap.Error(err))
		return nil, err
	}

	// 学员只能查看自己的报名
	if actorRole == model.RoleStudent && enrollment.StudentID != actorID {
		return nil, ErrForbidden
	}

	resp := toEnrollmentResponse(enrollment)
	return &resp, nil
}

func (s *enrollmentService) List(ctx context.Context, actorID, actorRole string, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error) {
	// 学员视角强制过滤为本人
	if actorRole == model.RoleStudent {
		req.StudentID = &actorID
	}

	enrollments, total, err := s.repo.Enrollment.List(ctx, req)
	if err != nil {
		s.logger.Error("查询报名列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		resp = append(resp, toEnrollmentResponse(&enrollments[i]))
	}
	return resp, total, nil
}

// Update 更新报名：
//   - notes：本人或管理员
//   - status：讲师/管理员，且必须是合法状态迁移
//   - payment_status：仅管理员（网关回调之外的人工对账通道)
func (s *enrollmentService) Update(ctx context.Context, actorID, actorRole, enrollmentID string, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}

	if req.Status != nil && *req.Status != enrollment.Status {
		if actorRole != model.RoleInstructor && actorRole != model.RoleAdmin {
			return nil, ErrForbidden
		}
		if !isValidTransition(enrollment.Status, *req.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, enrollment.Status, *req.Status)
		}
		updates["status"] = *req.Status
	}

	if req.PaymentStatus != nil && *req.PaymentStatus != enrollment.PaymentStatus {
		if actorRole != model.RoleAdmin {
			return nil, ErrForbidden
		}
		updates["payment_status"] = *req.PaymentStatus
	}

	if req.Notes != nil {
		if actorRole == model.RoleStudent && enrollment.StudentID != actorID {
			return nil, ErrForbidden
		}
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.repo.Enrollment.Update(ctx, enrollmentID, updates); err != nil {
			s.logger.Error("更新报名失败", zap.Error(err))
			return nil, err
		}
	}

	if newStatus, ok := updates["status"].(string); ok {
		s.logger.Info("报名状态变更",
			zap.String("enrollment_id", enrollmentID),
			zap.String("from", enrollment.Status),
			zap.String("to", newStatus))
		s.notificationSvc.NotifyEnrollmentStatusChanged(ctx, enrollment.StudentID, enrollmentID, newStatus)
	}

	return s.getResponse(ctx, enrollmentID)
}

// Delete 取消报名：学员可取消自己 pending 状态的报名，管理员不受限
// 取消后座位随占位数统计自动释放
func (s *enrollmentService) Delete(ctx context.Context, actorID, actorRole, enrollmentID string) error {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	if actorRole != model.RoleAdmin {
		if enrollment.StudentID != actorID || enrollment.Status != model.EnrollmentPending {
			return ErrForbidden
		}
	}

	return s.repo.Enrollment.Delete(ctx, enrollmentID)
}

func (s *enrollmentService) Stats(ctx context.Context) (*dto.EnrollmentStatsResponse, error) {
	counts, err := s.repo.Enrollment.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("统计报名失败", zap.Error(err))
		return nil, err
	}

	stats := &dto.EnrollmentStatsResponse{
		Pending:   counts[model.EnrollmentPending],
		Approved:  counts[model.EnrollmentApproved],
		Rejected:  counts[model.EnrollmentRejected],
		Completed: counts[model.EnrollmentCompleted],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected + stats.Completed
	return stats, nil
}

func (s *enrollmentService) getResponse(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetWithRelations(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	resp := toEnrollmentResponse(enrollment)
	return &resp, nil
}

func isValidTransition(from, to string) bool {
	for _, allowed := range enrollmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func toEnrollmentResponse(e *model.Enrollment) dto.EnrollmentResponse {
	resp := dto.EnrollmentResponse{
		ID:             e.EnrollmentID,
		StudentID:      e.StudentID,
		CourseID:       e.CourseID,
		EnrollmentDate: e.EnrollmentDate.Format(time.RFC3339),
		Status:         e.Status,
		PaymentStatus:  e.PaymentStatus,
		Notes:          e.Notes,
	}
	if e.Student != nil {
		student := toUserResponse(e.Student)
		resp.Student = &student
	}
	if e.Course != nil {
		course := toCourseResponse(e.Course, 0)
		resp.Course = &course
	}
	return resp
}
