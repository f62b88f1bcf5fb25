package model

import "time"

// Schedule 课程时间表 — 对应 schedules
// start_time/end_time 为 "HH:MM" 墙上时间，end > start 由 DB CHECK 约束保证
type Schedule struct {
	ScheduleID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	CourseID    string     `gorm:"type:uuid;not null;index"                       json:"course_id"`
	DayOfWeek   int        `gorm:"not null;index"                                 json:"day_of_week"` // 0=周日 … 6=周六
	StartTime   string     `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime     string     `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Location    *string    `gorm:"type:varchar(255)"                              json:"location,omitempty"`
	IsRecurring bool       `gorm:"not null;default:true"                          json:"is_recurring"`
	StartDate   *time.Time `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	IsActive    bool       `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }
