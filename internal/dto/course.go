package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title        string  `json:"title"         binding:"required,min=2,max=255"`
	Description  *string `json:"description"   binding:"omitempty,max=5000"`
	InstructorID *string `json:"instructor_id" binding:"omitempty,uuid"`
	Duration     int     `json:"duration"      binding:"omitempty,min=0"`
	Price        float64 `json:"price"         binding:"min=0"`
	Capacity     int     `json:"capacity"      binding:"required,min=1"`
	StartDate    *string `json:"start_date"    binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string `json:"end_date"      binding:"omitempty,datetime=2006-01-02"`
	ImageURL     *string `json:"image_url"     binding:"omitempty,max=255"`
}

// UpdateCourseRequest 更新课程请求（部分字段）
type UpdateCourseRequest struct {
	Title        *string  `json:"title"         binding:"omitempty,min=2,max=255"`
	Description  *string  `json:"description"   binding:"omitempty,max=5000"`
	InstructorID *string  `json:"instructor_id" binding:"omitempty,uuid"`
	Duration     *int     `json:"duration"      binding:"omitempty,min=0"`
	Price        *float64 `json:"price"         binding:"omitempty,min=0"`
	Capacity     *int     `json:"capacity"      binding:"omitempty,min=1"`
	StartDate    *string  `json:"start_date"    binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string  `json:"end_date"      binding:"omitempty,datetime=2006-01-02"`
	ImageURL     *string  `json:"image_url"     binding:"omitempty,max=255"`
	IsActive     *bool    `json:"is_active"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Keyword       string  `form:"keyword"        binding:"omitempty,max=100"`
	InstructorID  *string `form:"instructor_id"  binding:"omitempty,uuid"`
	AvailableOnly bool    `form:"available_only"` // 仅返回激活且有空位的课程
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   *string       `json:"description,omitempty"`
	Instructor    *UserResponse `json:"instructor,omitempty"`
	Duration      int           `json:"duration"`
	Price         float64       `json:"price"`
	Capacity      int           `json:"capacity"`
	EnrolledCount int64         `json:"enrolled_count"` // pending+approved 报名数
	StartDate     *string       `json:"start_date,omitempty"`
	EndDate       *string       `json:"end_date,omitempty"`
	ImageURL      *string       `json:"image_url,omitempty"`
	IsActive      bool          `json:"is_active"`
	CreatedAt     string        `json:"created_at"`
}
