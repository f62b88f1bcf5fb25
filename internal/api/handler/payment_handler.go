package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/service"
	"github.com/firasabed78/culinary--academy/pkg/response"
)

// PaymentHandler 支付模块 HTTP 处理器
type PaymentHandler struct {
	paymentSvc service.PaymentService
}

// NewPaymentHandler 创建 PaymentHandler
func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// CreatePayment 手工录入支付记录（管理员）
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	payment, err := h.paymentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.Created(c, payment)
}

// CreateIntent 创建支付意图
// POST /api/v1/enrollments/:id/payment-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	actorID, actorRole, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	intent, err := h.paymentSvc.CreateIntent(c.Request.Context(), actorID, actorRole, c.Param("id"), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.Created(c, intent)
}

// HandleWebhook 网关回调入口
// 无论业务处理成败一律返回 200，避免网关无限重试；
// 失败详情由 Service 层日志与指标记录
// POST /api/v1/payments/webhook
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	_ = h.paymentSvc.HandleWebhook(c.Request.Context(), &req)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// RefundPayment 退款（管理员）
// POST /api/v1/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	payment, err := h.paymentSvc.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, payment)
}

// GetPayment 支付详情（管理员）
// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, payment)
}

// ListPayments 支付列表（管理员）
// GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req dto.PaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	payments, total, err := h.paymentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, payments, total, req.GetPage(), req.GetPageSize())
}

// GetPaymentStats 支付统计（管理员）
// GET /api/v1/payments/stats
func (h *PaymentHandler) GetPaymentStats(c *gin.Context) {
	stats, err := h.paymentSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		response.NotFound(c, 14001, "payment not found")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 13001, "enrollment not found")
	case errors.Is(err, service.ErrNotRefundable):
		response.BadRequest(c, 14002, "Only completed payments can be refunded")
	case errors.Is(err, service.ErrNoTransactionID):
		response.BadRequest(c, 14003, "payment has no gateway transaction")
	case errors.Is(err, service.ErrNothingToPay):
		response.BadRequest(c, 14004, "enrollment has no outstanding amount")
	case errors.Is(err, service.ErrGatewayRejected):
		response.BadRequest(c, 14005, "payment gateway rejected the request")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "course not found")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "insufficient permissions")
	default:
		response.InternalError(c)
	}
}
