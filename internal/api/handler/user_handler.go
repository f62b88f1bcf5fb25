package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/service"
	"github.com/firasabed78/culinary--academy/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表（管理员）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	// 非管理员只能查看自己
	if actorRole != model.RoleAdmin && targetID != actorID {
		response.Forbidden(c, 10003, "insufficient permissions")
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), targetID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser 更新用户信息
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if actorRole != model.RoleAdmin && targetID != actorID {
		response.Forbidden(c, 10003, "insufficient permissions")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	// is_active 仅管理员可改
	if req.IsActive != nil && actorRole != model.RoleAdmin {
		response.Forbidden(c, 10003, "insufficient permissions")
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), targetID, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(c, 11002, "email is already registered")
			return
		}
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// AssignRole 分配角色（管理员）
// PUT /api/v1/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	user, err := h.userSvc.AssignRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			response.BadRequest(c, 11007, "invalid role")
			return
		}
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeactivateUser 停用账户（管理员）
// POST /api/v1/users/:id/deactivate
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	if err := h.userSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeleteUser 删除用户（管理员）
// 有关联记录的用户降级为停用
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		response.NotFound(c, 11005, "user not found")
		return
	}
	response.InternalError(c)
}
