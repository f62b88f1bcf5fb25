package model

// 通知类别
const (
	NotificationSystem     = "system"
	NotificationEnrollment = "enrollment"
	NotificationPayment    = "payment"
	NotificationCourse     = "course"
	NotificationSchedule   = "schedule"
)

// Notification 通知消息表 — 对应 notifications
// entity_id + entity_type 为可选的多态实体引用（enrollment | payment | course | schedule）
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string  `gorm:"type:text;not null"                             json:"message"`
	Type           string  `gorm:"type:varchar(20);not null;default:'system'"     json:"type"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	EntityID       *string `gorm:"type:uuid"                                      json:"entity_id,omitempty"`
	EntityType     *string `gorm:"type:varchar(50)"                               json:"entity_type,omitempty"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
