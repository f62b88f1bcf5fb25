package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,oneof=student instructor admin"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	IsActive *bool  `form:"is_active"`
}

// UpdateUserRequest 更新用户信息请求
// 普通用户仅可改自己的基础字段，is_active 仅管理员可改
type UpdateUserRequest struct {
	FullName       *string `json:"full_name"       binding:"omitempty,min=2,max=100"`
	Email          *string `json:"email"           binding:"omitempty,email"`
	Phone          *string `json:"phone"           binding:"omitempty,max=20"`
	Address        *string `json:"address"         binding:"omitempty,max=500"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,max=255"`
	IsActive       *bool   `json:"is_active"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student instructor admin"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// UserDetailResponse 用户详细信息响应
type UserDetailResponse struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
}
