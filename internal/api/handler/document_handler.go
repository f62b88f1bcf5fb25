package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/service"
	"github.com/firasabed78/culinary--academy/pkg/response"
)

// DocumentHandler 文档模块 HTTP 处理器
type DocumentHandler struct {
	documentSvc service.DocumentService
}

// NewDocumentHandler 创建 DocumentHandler
func NewDocumentHandler(documentSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// UploadDocument 上传文档
// multipart/form-data: file（文件）+ document_type（类别）
// POST /api/v1/documents
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "file is required")
		return
	}

	documentType := c.PostForm("document_type")
	switch documentType {
	case "id_proof", "certification", "resume", "transcript", "other":
	default:
		response.BadRequest(c, 16003, "invalid document type")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	doc, err := h.documentSvc.Upload(c.Request.Context(), userID, fileHeader.Filename, documentType, fileHeader.Size, f)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.Created(c, doc)
}

// ListDocuments 文档列表（非管理员仅见自己的文档）
// GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	docs, total, err := h.documentSvc.List(c.Request.Context(), actorID, actorRole, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, docs, total, req.GetPage(), req.GetPageSize())
}

// GetDocument 文档元数据
// GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	doc, err := h.documentSvc.GetByID(c.Request.Context(), actorID, actorRole, c.Param("id"))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, doc)
}

// DownloadDocument 下载文档内容
// GET /api/v1/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	doc, rc, err := h.documentSvc.Download(c.Request.Context(), actorID, actorRole, c.Param("id"))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, doc.FileName))
	c.Header("Content-Type", "application/octet-stream")
	c.DataFromReader(200, doc.FileSize, "application/octet-stream", rc, nil)
}

// DeleteDocument 删除文档
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.documentSvc.Delete(c.Request.Context(), actorID, actorRole, c.Param("id")); err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *DocumentHandler) handleDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		response.NotFound(c, 16001, "document not found")
	case errors.Is(err, service.ErrFileTooLarge):
		response.BadRequest(c, 16002, "file exceeds maximum allowed size")
	case errors.Is(err, service.ErrFileTypeForbidden):
		response.BadRequest(c, 16004, "file type is not allowed")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "insufficient permissions")
	default:
		response.InternalError(c)
	}
}
