package dto

// ── 支付模块 DTO ──

// CreatePaymentRequest 创建支付记录请求
type CreatePaymentRequest struct {
	EnrollmentID  string  `json:"enrollment_id"  binding:"required,uuid"`
	Amount        float64 `json:"amount"         binding:"required,gt=0"`
	PaymentMethod *string `json:"payment_method" binding:"omitempty,oneof=credit_card debit_card paypal bank_transfer other"`
	Notes         *string `json:"notes"          binding:"omitempty,max=500"`
}

// CreateIntentRequest 创建支付意图请求
type CreateIntentRequest struct {
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// IntentResponse 支付意图响应（给前端完成支付用）
type IntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
}

// WebhookRequest 网关回调事件
// data.object 即网关的 payment_intent 对象
type WebhookRequest struct {
	Type string `json:"type" binding:"required"`
	Data struct {
		Object WebhookIntent `json:"object"`
	} `json:"data"`
}

// WebhookIntent 回调事件中的支付意图
type WebhookIntent struct {
	ID string `json:"id"`
}

// PaymentListRequest 支付列表查询参数
type PaymentListRequest struct {
	PaginationRequest
	EnrollmentID *string `form:"enrollment_id" binding:"omitempty,uuid"`
	Status       string  `form:"status"        binding:"omitempty,oneof=pending completed failed refunded"`
}

// PaymentResponse 支付记录响应
type PaymentResponse struct {
	ID            string  `json:"id"`
	EnrollmentID  string  `json:"enrollment_id"`
	Amount        float64 `json:"amount"`
	PaymentDate   string  `json:"payment_date"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
	Status        string  `json:"status"`
	Notes         *string `json:"notes,omitempty"`
}

// PaymentStatsResponse 支付统计响应
type PaymentStatsResponse struct {
	TotalAmount    float64 `json:"total_amount"` // completed 总金额
	TotalCount     int64   `json:"total_count"`
	PendingCount   int64   `json:"pending_count"`
	CompletedCount int64   `json:"completed_count"`
	FailedCount    int64   `json:"failed_count"`
	RefundedCount  int64   `json:"refunded_count"`
}
