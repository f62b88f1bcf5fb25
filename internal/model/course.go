package model

import "time"

// Course 课程表 — 对应 courses
// 课程删除为软删除，报名与时间表随课程级联清理
type Course struct {
	CourseID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Title        string     `gorm:"type:varchar(255);not null;index"               json:"title"`
	Description  *string    `gorm:"type:text"                                      json:"description,omitempty"`
	InstructorID *string    `gorm:"type:uuid;index"                                json:"instructor_id,omitempty"`
	Duration     int        `gorm:"not null;default:0"                             json:"duration"` // 课程时长（天）
	Price        float64    `gorm:"type:numeric(10,2);not null;default:0"          json:"price"`
	Capacity     int        `gorm:"not null"                                       json:"capacity"`
	StartDate    *time.Time `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	ImageURL     *string    `gorm:"type:varchar(255)"                              json:"image_url,omitempty"`
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	// 关联
	Instructor  *User        `gorm:"foreignKey:InstructorID;references:UserID" json:"instructor,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;references:CourseID;constraint:OnDelete:CASCADE" json:"enrollments,omitempty"`
	Schedules   []Schedule   `gorm:"foreignKey:CourseID;references:CourseID;constraint:OnDelete:CASCADE" json:"schedules,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
