package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

// DocumentRepository 文档数据访问接口
type DocumentRepository interface {
	Create(ctx context.Context, document *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	List(ctx context.Context, userID string, req *dto.DocumentListRequest) ([]model.Document, int64, error)
	Delete(ctx context.Context, id string) error
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo 创建 DocumentRepository 实例
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, document *model.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var document model.Document
	err := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		First(&document).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// List 查询指定用户的文档；userID 为空时不限用户（管理员视角）
func (r *documentRepo) List(ctx context.Context, userID string, req *dto.DocumentListRequest) ([]model.Document, int64, error) {
	var documents []model.Document
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Document{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	if req.DocumentType != "" {
		db = db.Where("document_type = ?", req.DocumentType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(req.GetOffset()).Limit(req.GetPageSize()).
		Order("upload_date DESC").
		Find(&documents).Error
	return documents, total, err
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", id).
		Delete(&model.Document{}).Error
}
