package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
	List(ctx context.Context, req *dto.PaymentListRequest) ([]model.Payment, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*dto.PaymentStatsResponse, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo 创建 PaymentRepository 实例
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) List(ctx context.Context, req *dto.PaymentListRequest) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Payment{})
	if req.EnrollmentID != nil {
		db = db.Where("enrollment_id = ?", *req.EnrollmentID)
	}
	if req.Status != "" {
		db = db.Where("status = ?", req.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(req.GetOffset()).Limit(req.GetPageSize()).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_id = ?", id).
		Updates(fields).Error
}

func (r *paymentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("payment_id = ?", id).
		Delete(&model.Payment{}).Error
}

// Stats 支付汇总：completed 总金额与各状态数量
func (r *paymentRepo) Stats(ctx context.Context) (*dto.PaymentStatsResponse, error) {
	stats := &dto.PaymentStatsResponse{}

	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ?", model.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalAmount).Error
	if err != nil {
		return nil, err
	}

	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err = r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, rw := range rows {
		stats.TotalCount += rw.Count
		switch rw.Status {
		case model.PaymentPending:
			stats.PendingCount = rw.Count
		case model.PaymentCompleted:
			stats.CompletedCount = rw.Count
		case model.PaymentFailed:
			stats.FailedCount = rw.Count
		case model.PaymentRefunded:
			stats.RefundedCount = rw.Count
		}
	}

	return stats, nil
}
