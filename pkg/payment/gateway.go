package payment

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/config"
)

// Intent 网关侧支付意图
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Refund 网关侧退款结果
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Gateway 外部支付网关接口（Stripe 风格 API）
// Service 层依赖该接口，便于测试时替换
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	RefundIntent(ctx context.Context, intentID string) (*Refund, error)
}

// gatewayError 网关返回的错误体
type gatewayError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client 基于 resty 的网关 HTTP 客户端
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient 创建支付网关客户端
func NewClient(cfg *config.PaymentConfig, logger *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.SecretKey).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &Client{http: http, logger: logger}
}

// CreateIntent 创建支付意图
// amountMinor 为最小货币单位（如美分）
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	form := map[string]string{
		"amount":   fmt.Sprintf("%d", amountMinor),
		"currency": currency,
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	var intent Intent
	var gwErr gatewayError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&intent).
		SetError(&gwErr).
		Post("/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("请求支付网关失败: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("创建支付意图被网关拒绝",
			zap.Int("status", resp.StatusCode()),
			zap.String("type", gwErr.Error.Type),
			zap.String("message", gwErr.Error.Message),
		)
		return nil, fmt.Errorf("gateway rejected payment intent: %s", gwErr.Error.Message)
	}

	return &intent, nil
}

// RefundIntent 对指定支付意图发起退款
func (c *Client) RefundIntent(ctx context.Context, intentID string) (*Refund, error) {
	var refund Refund
	var gwErr gatewayError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"payment_intent": intentID}).
		SetResult(&refund).
		SetError(&gwErr).
		Post("/refunds")
	if err != nil {
		return nil, fmt.Errorf("请求支付网关失败: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("退款被网关拒绝",
			zap.Int("status", resp.StatusCode()),
			zap.String("intent_id", intentID),
			zap.String("message", gwErr.Error.Message),
		)
		return nil, fmt.Errorf("gateway rejected refund: %s", gwErr.Error.Message)
	}

	return &refund, nil
}
