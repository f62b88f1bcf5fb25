package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

// ScheduleRepository 课程时间表数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	GetWithCourse(ctx context.Context, id string) (*model.Schedule, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]model.Schedule, error)
	ListActiveByCourse(ctx context.Context, courseID string) ([]model.Schedule, error)
	FindOverlapping(ctx context.Context, courseID string, dayOfWeek int, startTime, endTime, excludeID string) ([]model.Schedule, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) GetWithCourse(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, req *dto.ScheduleListRequest) ([]model.Schedule, error) {
	var schedules []model.Schedule

	db := r.db.WithContext(ctx).Preload("Course")
	if req.CourseID != nil {
		db = db.Where("course_id = ?", *req.CourseID)
	}
	if req.DayOfWeek != nil {
		db = db.Where("day_of_week = ?", *req.DayOfWeek)
	}

	err := db.Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

// ListActiveByCourse 查询课程全部激活时间表（ICS 导出使用）
func (r *scheduleRepo) ListActiveByCourse(ctx context.Context, courseID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND is_active = ?", courseID, true).
		Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

// FindOverlapping 查询同课程同星期内与 [startTime, endTime) 重叠的激活时间表
// 区间重叠判定：s1 < e2 AND s2 < e1（"HH:MM" 字符串可按字典序比较）
// excludeID 非空时排除自身（更新场景）
func (r *scheduleRepo) FindOverlapping(ctx context.Context, courseID string, dayOfWeek int, startTime, endTime, excludeID string) ([]model.Schedule, error) {
	var schedules []model.Schedule

	db := r.db.WithContext(ctx).
		Where("course_id = ? AND day_of_week = ? AND is_active = ?", courseID, dayOfWeek, true).
		Where("start_time < ? AND ? < end_time", endTime, startTime)
	if excludeID != "" {
		db = db.Where("schedule_id != ?", excludeID)
	}

	err := db.Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("schedule_id = ?", id).
		Updates(fields).Error
}

func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		Delete(&model.Schedule{}).Error
}
