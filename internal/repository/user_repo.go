package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]model.User, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	CountOwnedRecords(ctx context.Context, id string) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context, req *dto.UserListRequest) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if req.Role != "" {
		db = db.Where("role = ?", req.Role)
	}
	if req.Keyword != "" {
		kw := "%" + req.Keyword + "%"
		db = db.Where("full_name ILIKE ? OR email ILIKE ?", kw, kw)
	}
	if req.IsActive != nil {
		db = db.Where("is_active = ?", *req.IsActive)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(req.GetOffset()).Limit(req.GetPageSize()).
		Order("created_at DESC").
		Find(&users).Error
	return users, total, err
}

func (r *userRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(fields).Error
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&model.User{}).Error
}

// CountOwnedRecords 统计用户名下的课程、报名与文档数量
// 有归属记录的用户应停用而非删除
func (r *userRepo) CountOwnedRecords(ctx context.Context, id string) (int64, error) {
	var courses, enrollments, documents int64

	if err := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("instructor_id = ?", id).Count(&courses).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("student_id = ?", id).Count(&enrollments).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Document{}).
		Where("user_id = ?", id).Count(&documents).Error; err != nil {
		return 0, err
	}

	return courses + enrollments + documents, nil
}
