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
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleOverlap  = errors.New("schedule overlaps with an existing schedule for this course")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
)

// ScheduleService 课程时间表业务接口
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, scheduleID string) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error)
	Update(ctx context.Context, scheduleID string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, scheduleID string) error
}

type scheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger}
}

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	// "HH:MM" 零填充格式可直接按字典序比较
	if req.EndTime <= req.StartTime {
		return nil, ErrInvalidTimeRange
	}

	// 冲突检测仅限同一课程同一星期几的激活时间段
	if err := s.checkOverlap(ctx, req.CourseID, *req.DayOfWeek, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	isRecurring := true
	if req.IsRecurring != nil {
		isRecurring = *req.IsRecurring
	}

	schedule := &model.Schedule{
		CourseID:    req.CourseID,
		DayOfWeek:   *req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		IsRecurring: isRecurring,
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    true,
	}
	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建时间表失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, schedule.ScheduleID)
}

func (s *scheduleService) GetByID(ctx context.Context, scheduleID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetWithCourse(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询时间表失败", zap.Error(err))
		return nil, err
	}
	resp := toScheduleResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	schedules, err := s.repo.Schedule.List(ctx, req)
	if err != nil {
		s.logger.Error("查询时间表列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		resp = append(resp, toScheduleResponse(&schedules[i]))
	}
	return resp, nil
}

func (s *scheduleService) Update(ctx context.Context, scheduleID string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	// 合并更新后的时段，整体做一次校验
	dayOfWeek := schedule.DayOfWeek
	startTime := schedule.StartTime
	endTime := schedule.EndTime
	if req.DayOfWeek != nil {
		dayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if endTime <= startTime {
		return nil, ErrInvalidTimeRange
	}
	if err := s.checkOverlap(ctx, schedule.CourseID, dayOfWeek, startTime, endTime, scheduleID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.DayOfWeek != nil {
		updates["day_of_week"] = *req.DayOfWeek
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.IsRecurring != nil {
		updates["is_recurring"] = *req.IsRecurring
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.StartDate != nil {
		t, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		updates["start_date"] = t
	}
	if req.EndDate != nil {
		t, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		updates["end_date"] = t
	}

	if len(updates) > 0 {
		if err := s.repo.Schedule.Update(ctx, scheduleID, updates); err != nil {
			s.logger.Error("更新时间表失败", zap.Error(err))
			return nil, err
		}
	}

	return s.GetByID(ctx, scheduleID)
}

func (s *scheduleService) Delete(ctx context.Context, scheduleID string) error {
	if _, err := s.repo.Schedule.GetByID(ctx, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	return s.repo.Schedule.Delete(ctx, scheduleID)
}

// checkOverlap 判定 [s1,e1) 与 [s2,e2) 相交：s1 < e2 且 s2 < e1
// 端点相接（上一节结束即下一节开始）不算冲突
func (s *scheduleService) checkOverlap(ctx context.Context, courseID string, dayOfWeek int, startTime, endTime, excludeID string) error {
	overlapping, err := s.repo.Schedule.FindOverlapping(ctx, courseID, dayOfWeek, startTime, endTime, excludeID)
	if err != nil {
		s.logger.Error("查询时间冲突失败", zap.Error(err))
		return err
	}
	if len(overlapping) > 0 {
		return ErrScheduleOverlap
	}
	return nil
}

func toScheduleResponse(sc *model.Schedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:          sc.ScheduleID,
		CourseID:    sc.CourseID,
		DayOfWeek:   sc.DayOfWeek,
		StartTime:   sc.StartTime,
		EndTime:     sc.EndTime,
		Location:    sc.Location,
		IsRecurring: sc.IsRecurring,
		IsActive:    sc.IsActive,
	}
	if sc.Course != nil {
		resp.CourseTitle = sc.Course.Title
	}
	if sc.StartDate != nil {
		d := sc.StartDate.Format("2006-01-02")
		resp.StartDate = &d
	}
	if sc.EndDate != nil {
		d := sc.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
