package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/repository"
)

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrNotAnInstructor   = errors.New("assigned user is not an instructor")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrCourseHasStudents = errors.New("course has active enrollments and cannot be deleted")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, courseID string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	Update(ctx context.Context, courseID string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, courseID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	// 讲师校验：必须是存在且角色为 instructor 的用户
	if req.InstructorID != nil {
		if err := s.validateInstructor(ctx, *req.InstructorID); err != nil {
			return nil, err
		}
	}

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: req.InstructorID,
		Duration:     req.Duration,
		Price:        req.Price,
		Capacity:     req.Capacity,
		StartDate:    startDate,
		EndDate:      endDate,
		ImageURL:     req.ImageURL,
		IsActive:     true,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, course.CourseID)
}

func (s *courseService) GetByID(ctx context.Context, courseID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetWithInstructor(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.CountActiveByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("统计课程报名数失败", zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course, enrolled)
	return &resp, nil
}

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	courses, total, err := s.repo.Course.List(ctx, req)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		enrolled, err := s.repo.Enrollment.CountActiveByCourse(ctx, courses[i].CourseID)
		if err != nil {
			return nil, 0, err
		}
		resp = append(resp, toCourseResponse(&courses[i], enrolled))
	}
	return resp, total, nil
}

func (s *courseService) Update(ctx context.Context, courseID string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if req.InstructorID != nil {
		if err := s.validateInstructor(ctx, *req.InstructorID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.InstructorID != nil {
		updates["instructor_id"] = *req.InstructorID
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	// 日期校验需合并已有值再比较
	newStart, newEnd := course.StartDate, course.EndDate
	if req.StartDate != nil {
		t, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		newStart = &t
		updates["start_date"] = t
	}
	if req.EndDate != nil {
		t, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		newEnd = &t
		updates["end_date"] = t
	}
	if newStart != nil && newEnd != nil && newEnd.Before(*newStart) {
		return nil, ErrInvalidDateRange
	}

	if len(updates) > 0 {
		if err := s.repo.Course.Update(ctx, courseID, updates); err != nil {
			s.logger.Error("更新课程失败", zap.Error(err))
			return nil, err
		}
	}

	return s.GetByID(ctx, courseID)
}

// Delete 软删除课程；存在占位报名时拒绝删除
func (s *courseService) Delete(ctx context.Context, courseID string) error {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	active, err := s.repo.Enrollment.CountActiveByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrCourseHasStudents
	}

	return s.repo.Course.SoftDelete(ctx, courseID)
}

func (s *courseService) validateInstructor(ctx context.Context, instructorID string) error {
	user, err := s.repo.User.GetByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAnInstructor
		}
		return err
	}
	if user.Role != model.RoleInstructor && user.Role != model.RoleAdmin {
		return ErrNotAnInstructor
	}
	return nil
}

func parseDateRange(start, end *string) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	if start != nil {
		t, err := time.Parse("2006-01-02", *start)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		startDate = &t
	}
	if end != nil {
		t, err := time.Parse("2006-01-02", *end)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		endDate = &t
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, nil, ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func toCourseResponse(c *model.Course, enrolled int64) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:            c.CourseID,
		Title:         c.Title,
		Description:   c.Description,
		Duration:      c.Duration,
		Price:         c.Price,
		Capacity:      c.Capacity,
		EnrolledCount: enrolled,
		ImageURL:      c.ImageURL,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
	if c.Instructor != nil {
		instructor := toUserResponse(c.Instructor)
		resp.Instructor = &instructor
	}
	if c.StartDate != nil {
		d := c.StartDate.Format("2006-01-02")
		resp.StartDate = &d
	}
	if c.EndDate != nil {
		d := c.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
