package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/config"
	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/repository"
	"github.com/firasabed78/culinary--academy/pkg/storage"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrFileTypeForbidden = errors.New("file type is not allowed")
)

// 允许上传的扩展名白名单
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".doc":  true,
	".docx": true,
}

// DocumentService 文档业务接口
type DocumentService interface {
	Upload(ctx context.Context, userID, fileName, documentType string, size int64, r io.Reader) (*dto.DocumentResponse, error)
	GetByID(ctx context.Context, actorID, actorRole, documentID string) (*dto.DocumentResponse, error)
	Download(ctx context.Context, actorID, actorRole, documentID string) (*dto.DocumentResponse, io.ReadCloser, error)
	List(ctx context.Context, actorID, actorRole string, req *dto.DocumentListRequest) ([]dto.DocumentResponse, int64, error)
	Delete(ctx context.Context, actorID, actorRole, documentID string) error
}

type documentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	store  storage.Storage
	logger *zap.Logger
}

func NewDocumentService(cfg *config.Config, repo *repository.Repository, store storage.Storage, logger *zap.Logger) DocumentService {
	return &documentService{
		cfg:    cfg,
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// Upload 校验大小与扩展名后落盘并写入元数据
func (s *documentService) Upload(ctx context.Context, userID, fileName, documentType string, size int64, r io.Reader) (*dto.DocumentResponse, error) {
	if size > s.cfg.Upload.MaxSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return nil, ErrFileTypeForbidden
	}

	path, err := s.store.Save(fileName, r)
	if err != nil {
		s.logger.Error("保存文件失败", zap.Error(err), zap.String("file_name", fileName))
		return nil, err
	}

	fileType := strings.TrimPrefix(ext, ".")
	doc := &model.Document{
		UserID:       userID,
		FileName:     fileName,
		FilePath:     path,
		FileType:     &fileType,
		FileSize:     size,
		DocumentType: documentType,
		UploadDate:   time.Now(),
	}
	if err := s.repo.Document.Create(ctx, doc); err != nil {
		// 元数据写入失败时清理孤儿文件
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.logger.Warn("清理孤儿文件失败", zap.Error(rmErr), zap.String("path", path))
		}
		s.logger.Error("创建文档记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("文档上传成功",
		zap.String("document_id", doc.DocumentID),
		zap.String("user_id", userID),
		zap.Int64("size", size))

	resp := toDocumentResponse(doc)
	return &resp, nil
}

func (s *documentService) GetByID(ctx context.Context, actorID, actorRole, documentID string) (*dto.DocumentResponse, error) {
	doc, err := s.getOwned(ctx, actorID, actorRole, documentID)
	if err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// Download 打开文档内容流，调用方负责关闭
func (s *documentService) Download(ctx context.Context, actorID, actorRole, documentID string) (*dto.DocumentResponse, io.ReadCloser, error) {
	doc, err := s.getOwned(ctx, actorID, actorRole, documentID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(doc.FilePath)
	if err != nil {
		s.logger.Error("打开文件失败", zap.Error(err), zap.String("path", doc.FilePath))
		return nil, nil, err
	}

	resp := toDocumentResponse(doc)
	return &resp, rc, nil
}

func (s *documentService) List(ctx context.Context, actorID, actorRole string, req *dto.DocumentListRequest) ([]dto.DocumentResponse, int64, error) {
	// 非管理员只能查看自己的文档
	scopeUserID := actorID
	if actorRole == model.RoleAdmin {
		scopeUserID = ""
		if req.UserID != nil {
			scopeUserID = *req.UserID
		}
	}

	docs, total, err := s.repo.Document.List(ctx, scopeUserID, req)
	if err != nil {
		s.logger.Error("查询文档列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, toDocumentResponse(&docs[i]))
	}
	return resp, total, nil
}

func (s *documentService) Delete(ctx context.Context, actorID, actorRole, documentID string) error {
	doc, err := s.getOwned(ctx, actorID, actorRole, documentID)
	if err != nil {
		return err
	}

	if err := s.repo.Document.Delete(ctx, documentID); err != nil {
		s.logger.Error("删除文档记录失败", zap.Error(err))
		return err
	}
	if err := s.store.Remove(doc.FilePath); err != nil {
		s.logger.Warn("删除文件失败", zap.Error(err), zap.String("path", doc.FilePath))
	}
	return nil
}

// getOwned 查询文档并做归属校验：非管理员仅可访问自己的文档
func (s *documentService) getOwned(ctx context.Context, actorID, actorRole, documentID string) (*model.Document, error) {
	doc, err := s.repo.Document.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("查询文档失败", zap.Error(err))
		return nil, err
	}
	if actorRole != model.RoleAdmin && doc.UserID != actorID {
		return nil, ErrForbidden
	}
	return doc, nil
}

func toDocumentResponse(d *model.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:           d.DocumentID,
		UserID:       d.UserID,
		FileName:     d.FileName,
		FileType:     d.FileType,
		FileSize:     d.FileSize,
		DocumentType: d.DocumentType,
		UploadDate:   d.UploadDate.Format(time.RFC3339),
	}
}
