package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

// EnrollmentRepository 报名数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	GetWithRelations(ctx context.Context, id string) (*model.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	List(ctx context.Context, req *dto.EnrollmentListRequest) ([]model.Enrollment, int64, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error)
	CountActiveByCourse(ctx context.Context, courseID string) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) GetWithRelations(ctx context.Context, id string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Preload("Payments").
		Where("enrollment_id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) List(ctx context.Context, req *dto.EnrollmentListRequest) ([]model.Enrollment, int64, error) {
	var enrollments []model.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if req.CourseID != nil {
		db = db.Where("course_id = ?", *req.CourseID)
	}
	if req.StudentID != nil {
		db = db.Where("student_id = ?", *req.StudentID)
	}
	if req.Status != "" {
		db = db.Where("status = ?", req.Status)
	}
	if req.PaymentStatus != "" {
		db = db.Where("payment_status = ?", req.PaymentStatus)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Student").Preload("Course").
		Offset(req.GetOffset()).Limit(req.GetPageSize()).
		Order("enrollment_date DESC").
		Find(&enrollments).Error
	return enrollments, total, err
}

// ListByCourse 查询课程全部报名（含学员信息，名册导出与开课提醒使用）
func (r *enrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ?", courseID).
		Order("enrollment_date ASC").
		Find(&enrollments).Error
	return enrollments, err
}

// CountActiveByCourse 统计课程占位报名数（pending + approved）
// 容量校验的唯一依据：capacity 列本身不随报名增减
func (r *enrollmentRepo) CountActiveByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("course_id = ? AND status IN ?", courseID, []string{model.EnrollmentPending, model.EnrollmentApproved}).
		Count(&count).Error
	return count, err
}

// CountByStatus 按状态统计全部报名数量
func (r *enrollmentRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *enrollmentRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ?", id).
		Updates(fields).Error
}

func (r *enrollmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("enrollment_id = ?", id).
		Delete(&model.Enrollment{}).Error
}
