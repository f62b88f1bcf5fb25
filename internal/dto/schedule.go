package dto

// ── 课程时间表模块 DTO ──

// CreateScheduleRequest 创建时间表请求
type CreateScheduleRequest struct {
	CourseID    string  `json:"course_id"    binding:"required,uuid"`
	DayOfWeek   *int    `json:"day_of_week"  binding:"required,min=0,max=6"`
	StartTime   string  `json:"start_time"   binding:"required,timehhmm"`
	EndTime     string  `json:"end_time"     binding:"required,timehhmm"`
	Location    *string `json:"location"     binding:"omitempty,max=255"`
	IsRecurring *bool   `json:"is_recurring"`
	StartDate   *string `json:"start_date"   binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date"     binding:"omitempty,datetime=2006-01-02"`
}

// UpdateScheduleRequest 更新时间表请求（部分字段）
type UpdateScheduleRequest struct {
	DayOfWeek   *int    `json:"day_of_week"  binding:"omitempty,min=0,max=6"`
	StartTime   *string `json:"start_time"   binding:"omitempty,timehhmm"`
	EndTime     *string `json:"end_time"     binding:"omitempty,timehhmm"`
	Location    *string `json:"location"     binding:"omitempty,max=255"`
	IsRecurring *bool   `json:"is_recurring"`
	StartDate   *string `json:"start_date"   binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date"     binding:"omitempty,datetime=2006-01-02"`
	IsActive    *bool   `json:"is_active"`
}

// ScheduleListRequest 时间表列表查询参数
type ScheduleListRequest struct {
	CourseID  *string `form:"course_id"   binding:"omitempty,uuid"`
	DayOfWeek *int    `form:"day_of_week" binding:"omitempty,min=0,max=6"`
}

// ScheduleResponse 时间表响应
type ScheduleResponse struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	CourseTitle string  `json:"course_title,omitempty"`
	DayOfWeek   int     `json:"day_of_week"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Location    *string `json:"location,omitempty"`
	IsRecurring bool    `json:"is_recurring"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	IsActive    bool    `json:"is_active"`
}
