package model

import "time"

// 文档类别
const (
	DocumentIDProof       = "id_proof"
	DocumentCertification = "certification"
	DocumentResume        = "resume"
	DocumentTranscript    = "transcript"
	DocumentOther         = "other"
)

// Document 用户文档表 — 对应 documents
type Document struct {
	DocumentID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"document_id"`
	UserID       string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	FileName     string    `gorm:"type:varchar(255);not null"                     json:"file_name"`
	FilePath     string    `gorm:"type:varchar(500);not null"                     json:"file_path"`
	FileType     *string   `gorm:"type:varchar(50)"                               json:"file_type,omitempty"`
	FileSize     int64     `gorm:"not null;default:0"                             json:"file_size"`
	DocumentType string    `gorm:"type:varchar(20);not null"                      json:"document_type"`
	UploadDate   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"upload_date"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Document) TableName() string { return "documents" }
