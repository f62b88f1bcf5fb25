package model

import "time"

// 支付方式
const (
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodDebitCard    = "debit_card"
	PaymentMethodPaypal       = "paypal"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodOther        = "other"
)

// 支付记录状态
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment 支付记录表 — 对应 payments
// transaction_id 存储网关侧支付意图 ID，全局唯一
type Payment struct {
	PaymentID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	EnrollmentID  string    `gorm:"type:uuid;not null;index"                       json:"enrollment_id"`
	Amount        float64   `gorm:"type:numeric(10,2);not null"                    json:"amount"`
	PaymentDate   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"payment_date"`
	PaymentMethod *string   `gorm:"type:varchar(20)"                               json:"payment_method,omitempty"`
	TransactionID *string   `gorm:"type:varchar(255);uniqueIndex"                  json:"transaction_id,omitempty"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Notes         *string   `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	BaseModel

	// 关联
	Enrollment *Enrollment `gorm:"foreignKey:EnrollmentID;references:EnrollmentID" json:"enrollment,omitempty"`
}

// TableName 指定表名
func (Payment) TableName() string { return "payments" }
