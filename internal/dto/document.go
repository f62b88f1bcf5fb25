package dto

// ── 文档模块 DTO ──

// DocumentListRequest 文档列表查询参数
type DocumentListRequest struct {
	PaginationRequest
	DocumentType string  `form:"document_type" binding:"omitempty,oneof=id_proof certification resume transcript other"`
	UserID       *string `form:"user_id"       binding:"omitempty,uuid"` // 仅管理员可按用户过滤
}

// DocumentResponse 文档信息响应
type DocumentResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	FileName     string  `json:"file_name"`
	FileType     *string `json:"file_type,omitempty"`
	FileSize     int64   `json:"file_size"`
	DocumentType string  `json:"document_type"`
	UploadDate   string  `json:"upload_date"`
}
