package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetWithInstructor(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]model.Course, int64, error)
	ListStartingOn(ctx context.Context, day time.Time) ([]model.Course, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetWithInstructor(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, req *dto.CourseListRequest) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Course{})
	if req.Keyword != "" {
		kw := "%" + req.Keyword + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ?", kw, kw)
	}
	if req.InstructorID != nil {
		db = db.Where("instructor_id = ?", *req.InstructorID)
	}
	if req.AvailableOnly {
		// 激活且 pending/approved 报名数未达容量
		db = db.Where("is_active = ?", true).
			Where(`capacity > (
				SELECT COUNT(*) FROM enrollments e
				WHERE e.course_id = courses.course_id
				  AND e.status IN ('pending', 'approved')
			)`)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Instructor").
		Offset(req.GetOffset()).Limit(req.GetPageSize()).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, total, err
}

// ListStartingOn 查询指定日期开课的激活课程（开课提醒任务使用）
func (r *courseRepo) ListStartingOn(ctx context.Context, day time.Time) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND start_date = ?", true, day.Format("2006-01-02")).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", id).
		Updates(fields).Error
}

func (r *courseRepo) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&model.Course{}).Error
}
