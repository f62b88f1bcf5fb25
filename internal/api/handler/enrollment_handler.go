package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/service"
	"github.com/firasabed78/culinary--academy/pkg/response"
)

// EnrollmentHandler 报名模块 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// CreateEnrollment 创建报名
// POST /api/v1/enrollments
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	enrollment, err := h.enrollmentSvc.Create(c.Request.Context(), actorID, actorRole, &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// ListEnrollments 报名列表
// 学员仅见自己的报名，讲师/管理员可按条件过滤
// GET /api/v1/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.EnrollmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	enrollments, total, err := h.enrollmentSvc.List(c.Request.Context(), actorID, actorRole, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, enrollments, total, req.GetPage(), req.GetPageSize())
}

// GetEnrollmentStats 报名统计（讲师/管理员）
// GET /api/v1/enrollments/stats
func (h *EnrollmentHandler) GetEnrollmentStats(c *gin.Context) {
	stats, err := h.enrollmentSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}

// GetEnrollment 报名详情
// GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.GetByID(c.Request.Context(), actorID, actorRole, c.Param("id"))
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// UpdateEnrollment 更新报名（状态/支付状态/备注，按角色分权）
// PUT /api/v1/enrollments/:id
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	enrollment, err := h.enrollmentSvc.Update(c.Request.Context(), actorID, actorRole, c.Param("id"), &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// DeleteEnrollment 取消报名
// DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Delete(c.Request.Context(), actorID, actorRole, c.Param("id")); err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 13001, "enrollment not found")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "course not found")
	case errors.Is(err, service.ErrCourseInactive):
		response.BadRequest(c, 13002, "cannot enroll in inactive course")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.BadRequest(c, 13003, "student is already enrolled in this course")
	case errors.Is(err, service.ErrCourseFull):
		response.BadRequest(c, 13004, "course has reached maximum capacity")
	case errors.Is(err, service.ErrInvalidTransition):
		response.BadRequest(c, 13005, "invalid enrollment status transition")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "insufficient permissions")
	default:
		response.InternalError(c)
	}
}
