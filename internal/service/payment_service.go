package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/config"
	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/repository"
	"github.com/firasabed78/culinary--academy/pkg/metrics"
	"github.com/firasabed78/culinary--academy/pkg/payment"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNotRefundable   = errors.New("only completed payments can be refunded")
	ErrNoTransactionID = errors.New("payment has no gateway transaction")
	ErrNothingToPay    = errors.New("enrollment has no outstanding amount")
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
)

// webhookEventSucceeded 是唯一触发对账的事件类型，其余事件仅记录
const webhookEventSucceeded = "payment_intent.succeeded"

// PaymentService 支付业务接口
type PaymentService interface {
	Create(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	CreateIntent(ctx context.Context, actorID, actorRole, enrollmentID string, req *dto.CreateIntentRequest) (*dto.IntentResponse, error)
	HandleWebhook(ctx context.Context, req *dto.WebhookRequest) error
	Refund(ctx context.Context, paymentID string) (*dto.PaymentResponse, error)
	GetByID(ctx context.Context, paymentID string) (*dto.PaymentResponse, error)
	List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, int64, error)
	Stats(ctx context.Context) (*dto.PaymentStatsResponse, error)
}

type paymentService struct {
	cfg             *config.Config
	repo            *repository.Repository
	gateway         payment.Gateway
	notificationSvc NotificationService
	logger          *zap.Logger
}

func NewPaymentService(
	cfg *config.Config,
	repo *repository.Repository,
	gateway payment.Gateway,
	notificationSvc NotificationService,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		cfg:             cfg,
		repo:            repo,
		gateway:         gateway,
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

// Create 手工录入支付记录（线下转账等不走网关的场景）
// 记录初始为 pending，待回调或管理端对账后转 completed
func (s *paymentService) Create(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if _, err := s.repo.Enrollment.GetByID(ctx, req.EnrollmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	p := &model.Payment{
		EnrollmentID:  req.EnrollmentID,
		Amount:        req.Amount,
		PaymentDate:   time.Now(),
		PaymentMethod: req.PaymentMethod,
		Status:        model.PaymentPending,
		Notes:         req.Notes,
	}
	if err := s.repo.Payment.Create(ctx, p); err != nil {
		s.logger.Error("创建支付记录失败", zap.Error(err))
		return nil, err
	}

	resp := toPaymentResponse(p)
	return &resp, nil
}

// CreateIntent 在网关侧创建支付意图，并落一条 pending 支付记录
// transaction_id 记录网关意图 ID，供回调对账
func (s *paymentService) CreateIntent(ctx context.Context, actorID, actorRole, enrollmentID string, req *dto.CreateIntentRequest) (*dto.IntentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetWithRelations(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if actorRole == model.RoleStudent && enrollment.StudentID != actorID {
		return nil, ErrForbidden
	}
	if enrollment.Course == nil {
		return nil, ErrCourseNotFound
	}
	if enrollment.Course.Price <= 0 {
		return nil, ErrNothingToPay
	}

	currency := s.cfg.Payment.Currency
	if req.Currency != "" {
		currency = strings.ToLower(req.Currency)
	}

	amountMinor := int64(math.Round(enrollment.Course.Price * 100))
	intent, err := s.gateway.CreateIntent(ctx, amountMinor, currency, map[string]string{
		"enrollment_id": enrollmentID,
		"student_id":    enrollment.StudentID,
		"course_id":     enrollment.CourseID,
	})
	if err != nil {
		s.logger.Error("网关创建支付意图失败", zap.Error(err), zap.String("enrollment_id", enrollmentID))
		// 网关拒绝也要留痕，失败记录落库
		failed := &model.Payment{
			EnrollmentID: enrollmentID,
			Amount:       enrollment.Course.Price,
			PaymentDate:  time.Now(),
			Status:       model.PaymentFailed,
		}
		if createErr := s.repo.Payment.Create(ctx, failed); createErr != nil {
			s.logger.Error("创建失败支付记录失败", zap.Error(createErr))
		}
		return nil, ErrGatewayRejected
	}

	p := &model.Payment{
		EnrollmentID:  enrollmentID,
		Amount:        enrollment.Course.Price,
		PaymentDate:   time.Now(),
		TransactionID: &intent.ID,
		Status:        model.PaymentPending,
	}
	if err := s.repo.Payment.Create(ctx, p); err != nil {
		s.logger.Error("创建支付记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("支付意图创建成功",
		zap.String("payment_id", p.PaymentID),
		zap.String("transaction_id", intent.ID),
		zap.Int64("amount_minor", amountMinor))

	return &dto.IntentResponse{
		ClientSecret: intent.ClientSecret,
		PaymentID:    p.PaymentID,
	}, nil
}

// HandleWebhook 处理网关回调
// 仅 payment_intent.succeeded 触发对账；重复投递幂等
// 任何业务失败只记录日志，由 Handler 统一返回 200
func (s *paymentService) HandleWebhook(ctx context.Context, req *dto.WebhookRequest) error {
	if req.Type != webhookEventSucceeded {
		s.logger.Info("忽略网关事件", zap.String("type", req.Type))
		metrics.IncrementWebhookEvent(req.Type, "ignored")
		return nil
	}

	intentID := req.Data.Object.ID
	p, err := s.repo.Payment.GetByTransactionID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("回调对应的支付记录不存在", zap.String("transaction_id", intentID))
			metrics.IncrementWebhookEvent(req.Type, "unmatched")
			return ErrPaymentNotFound
		}
		s.logger.Error("查询支付记录失败", zap.Error(err))
		metrics.IncrementWebhookEvent(req.Type, "error")
		return err
	}

	// 重复投递：已完成的记录不再处理
	if p.Status == model.PaymentCompleted {
		metrics.IncrementWebhookEvent(req.Type, "duplicate")
		return nil
	}

	if err := s.repo.Payment.Update(ctx, p.PaymentID, map[string]interface{}{
		"status":       model.PaymentCompleted,
		"payment_date": time.Now(),
	}); err != nil {
		s.logger.Error("更新支付记录失败", zap.Error(err))
		metrics.IncrementWebhookEvent(req.Type, "error")
		return err
	}
	if err := s.repo.Enrollment.Update(ctx, p.EnrollmentID, map[string]interface{}{
		"payment_status": model.PaymentStatusPaid,
	}); err != nil {
		s.logger.Error("同步报名支付状态失败", zap.Error(err))
		metrics.IncrementWebhookEvent(req.Type, "error")
		return err
	}

	s.logger.Info("支付对账完成",
		zap.String("payment_id", p.PaymentID),
		zap.String("transaction_id", intentID))
	metrics.IncrementWebhookEvent(req.Type, "reconciled")

	if enrollment, err := s.repo.Enrollment.GetByID(ctx, p.EnrollmentID); err == nil {
		s.notificationSvc.NotifyPaymentCompleted(ctx, enrollment.StudentID, p.PaymentID, p.Amount)
	}
	return nil
}

// Refund 退款，仅允许 completed 状态的支付
func (s *paymentService) Refund(ctx context.Context, paymentID string) (*dto.PaymentResponse, error) {
	p, err := s.repo.Payment.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if p.Status != model.PaymentCompleted {
		return nil, ErrNotRefundable
	}
	if p.TransactionID == nil {
		return nil, ErrNoTransactionID
	}

	// 网关退款失败不改动本地状态
	refund, err := s.gateway.RefundIntent(ctx, *p.TransactionID)
	if err != nil {
		s.logger.Error("网关退款失败", zap.Error(err), zap.String("payment_id", paymentID))
		return nil, ErrGatewayRejected
	}

	if err := s.repo.Payment.Update(ctx, paymentID, map[string]interface{}{
		"status": model.PaymentRefunded,
	}); err != nil {
		s.logger.Error("更新支付记录失败", zap.Error(err))
		return nil, err
	}
	if err := s.repo.Enrollment.Update(ctx, p.EnrollmentID, map[string]interface{}{
		"payment_status": model.PaymentStatusRefunded,
	}); err != nil {
		s.logger.Error("同步报名支付状态失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("退款成功",
		zap.String("payment_id", paymentID),
		zap.String("refund_id", refund.ID))

	if enrollment, err := s.repo.Enrollment.GetByID(ctx, p.EnrollmentID); err == nil {
		s.notificationSvc.NotifyPaymentRefunded(ctx, enrollment.StudentID, paymentID, p.Amount)
	}

	return s.GetByID(ctx, paymentID)
}

func (s *paymentService) GetByID(ctx context.Context, paymentID string) (*dto.PaymentResponse, error) {
	p, err := s.repo.Payment.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	resp := toPaymentResponse(p)
	return &resp, nil
}

func (s *paymentService) List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, int64, error) {
	payments, total, err := s.repo.Payment.List(ctx, req)
	if err != nil {
		s.logger.Error("查询支付列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, toPaymentResponse(&payments[i]))
	}
	return resp, total, nil
}

func (s *paymentService) Stats(ctx context.Context) (*dto.PaymentStatsResponse, error) {
	stats, err := s.repo.Payment.Stats(ctx)
	if err != nil {
		s.logger.Error("统计支付失败", zap.Error(err))
		return nil, err
	}
	return stats, nil
}

func toPaymentResponse(p *model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:            p.PaymentID,
		EnrollmentID:  p.EnrollmentID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate.Format(time.RFC3339),
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Status:        p.Status,
		Notes:         p.Notes,
	}
}
