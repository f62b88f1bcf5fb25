package model

import "time"

// 报名状态（管理流程）
const (
	EnrollmentPending   = "pending"   // 初始状态，待审批
	EnrollmentApproved  = "approved"  // 已批准
	EnrollmentRejected  = "rejected"  // 已驳回（终态）
	EnrollmentCompleted = "completed" // 已结课（终态）
)

// 报名支付状态（财务流程，独立于管理流程）
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Enrollment 报名表 — 对应 enrollments
// 同一 (student_id, course_id) 至多一条记录，创建时校验
type Enrollment struct {
	EnrollmentID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID      string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	CourseID       string    `gorm:"type:uuid;not null;index"                       json:"course_id"`
	EnrollmentDate time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrollment_date"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	PaymentStatus  string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"payment_status"`
	Notes          *string   `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	BaseModel

	// 关联
	Student  *User     `gorm:"foreignKey:StudentID;references:UserID"  json:"student,omitempty"`
	Course   *Course   `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
	Payments []Payment `gorm:"foreignKey:EnrollmentID;references:EnrollmentID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
