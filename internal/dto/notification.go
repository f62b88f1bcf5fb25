package dto

// ── 通知模块 DTO ──

// CreateNotificationRequest 创建系统通知请求（管理员）
type CreateNotificationRequest struct {
	UserID     string  `json:"user_id"     binding:"required,uuid"`
	Title      string  `json:"title"       binding:"required,min=1,max=200"`
	Message    string  `json:"message"     binding:"required,min=1,max=5000"`
	EntityID   *string `json:"entity_id"   binding:"omitempty,uuid"`
	EntityType *string `json:"entity_type" binding:"omitempty,max=50"`
	SendEmail  bool    `json:"send_email"`
}

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知信息响应
type NotificationResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Type       string  `json:"type"`
	IsRead     bool    `json:"is_read"`
	EntityID   *string `json:"entity_id,omitempty"`
	EntityType *string `json:"entity_type,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// UnreadCountResponse 未读数量响应
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
