package dto

// ── 报名模块 DTO ──

// CreateEnrollmentRequest 创建报名请求
// student_id 仅管理员可指定；学员本人报名时取当前登录用户
type CreateEnrollmentRequest struct {
	CourseID  string  `json:"course_id"  binding:"required,uuid"`
	StudentID *string `json:"student_id" binding:"omitempty,uuid"`
	Notes     *string `json:"notes"      binding:"omitempty,max=500"`
}

// UpdateEnrollmentRequest 更新报名请求
// 学员仅可改 notes；讲师可改 status；payment_status 仅管理员
type UpdateEnrollmentRequest struct {
	Status        *string `json:"status"         binding:"omitempty,oneof=pending approved rejected completed"`
	PaymentStatus *string `json:"payment_status" binding:"omitempty,oneof=pending paid refunded failed"`
	Notes         *string `json:"notes"          binding:"omitempty,max=500"`
}

// EnrollmentListRequest 报名列表查询参数
type EnrollmentListRequest struct {
	PaginationRequest
	CourseID      *string `form:"course_id"      binding:"omitempty,uuid"`
	StudentID     *string `form:"student_id"     binding:"omitempty,uuid"`
	Status        string  `form:"status"         binding:"omitempty,oneof=pending approved rejected completed"`
	PaymentStatus string  `form:"payment_status" binding:"omitempty,oneof=pending paid refunded failed"`
}

// EnrollmentResponse 报名信息响应
type EnrollmentResponse struct {
	ID             string          `json:"id"`
	StudentID      string          `json:"student_id"`
	CourseID       string          `json:"course_id"`
	Student        *UserResponse   `json:"student,omitempty"`
	Course         *CourseResponse `json:"course,omitempty"`
	EnrollmentDate string          `json:"enrollment_date"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	Notes          *string         `json:"notes,omitempty"`
}

// EnrollmentStatsResponse 报名统计响应
type EnrollmentStatsResponse struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
}
