package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/config"
)

// Mailer 通知邮件发送接口
// 业务层邮件均为 best-effort：失败只记日志，不向调用方传播
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer 基于 net/smtp 的邮件发送实现
type SMTPMailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTP 邮件发送器
func NewSMTPMailer(cfg *config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send 发送 HTML 邮件
// mail.enabled=false 时直接跳过（本地开发默认关闭）
func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.cfg.Enabled {
		m.logger.Debug("邮件发送已禁用，跳过", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	var msg strings.Builder
	msg.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n")
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", subject)
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	m.logger.Info("邮件发送成功", zap.String("to", to), zap.String("subject", subject))
	return nil
}
