package model

// 用户角色
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email          string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash   string  `gorm:"type:varchar(255);not null"                     json:"-"`
	FullName       string  `gorm:"type:varchar(255);not null"                     json:"full_name"`
	Role           string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	Phone          *string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	Address        *string `gorm:"type:text"                                      json:"address,omitempty"`
	ProfilePicture *string `gorm:"type:varchar(255)"                              json:"profile_picture,omitempty"`
	IsActive       bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Courses       []Course       `gorm:"foreignKey:InstructorID;references:UserID" json:"courses,omitempty"`
	Enrollments   []Enrollment   `gorm:"foreignKey:StudentID;references:UserID"    json:"enrollments,omitempty"`
	Documents     []Document     `gorm:"foreignKey:UserID;references:UserID"       json:"documents,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID;references:UserID"       json:"notifications,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
