package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/config"
	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

func setupTestPaymentService() (PaymentService, *testMocks, *mockGateway) {
	repo, m := newTestRepo()
	gateway := &mockGateway{}
	cfg := &config.Config{Payment: config.PaymentConfig{Currency: "usd"}}
	notificationSvc := NewNotificationService(repo, &mockMailer{}, zap.NewNop())
	svc := NewPaymentService(cfg, repo, gateway, notificationSvc, zap.NewNop())
	return svc, m, gateway
}

func seedEnrollment(m *testMocks, id, studentID, courseID string, price float64) {
	if _, ok := m.users.users[studentID]; !ok {
		seedStudent(m, studentID)
	}
	if _, ok := m.courses.courses[courseID]; !ok {
		m.courses.courses[courseID] = &model.Course{
			CourseID: courseID,
			Title:    "Course " + courseID,
			Capacity: 10,
			Price:    price,
			IsActive: true,
		}
	}
	m.enrollments.enrollments[id] = &model.Enrollment{
		EnrollmentID:  id,
		StudentID:     studentID,
		CourseID:      courseID,
		Status:        model.EnrollmentApproved,
		PaymentStatus: model.PaymentStatusPending,
	}
}

// ── CreateIntent 测试 ──

func TestPaymentService_CreateIntent_Success(t *testing.T) {
	svc, m, gateway := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 199.99)

	resp, err := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	if err != nil {
		t.Fatalf("CreateIntent 应成功: %v", err)
	}
	if resp.ClientSecret == "" {
		t.Error("ClientSecret 不应为空")
	}

	// 金额按最小货币单位取整
	if gateway.lastAmount != 19999 {
		t.Errorf("期望 amountMinor=19999，实际=%d", gateway.lastAmount)
	}
	if gateway.lastCurrency != "usd" {
		t.Errorf("期望默认币种 usd，实际=%s", gateway.lastCurrency)
	}
	if gateway.lastMetadata["enrollment_id"] != "enr-1" || gateway.lastMetadata["student_id"] != "stu-1" {
		t.Errorf("metadata 不完整: %v", gateway.lastMetadata)
	}

	// 应落一条 pending 支付记录，transaction_id 为网关意图 ID
	p, err := m.payments.GetByID(context.Background(), resp.PaymentID)
	if err != nil {
		t.Fatalf("支付记录应存在: %v", err)
	}
	if p.Status != model.PaymentPending {
		t.Errorf("期望支付记录状态 pending，实际=%s", p.Status)
	}
	if p.TransactionID == nil || *p.TransactionID != "pi_mock_1" {
		t.Errorf("期望 TransactionID=pi_mock_1，实际=%v", p.TransactionID)
	}
}

func TestPaymentService_CreateIntent_CurrencyOverride(t *testing.T) {
	svc, m, gateway := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 50)

	_, err := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{Currency: "EUR"})
	if err != nil {
		t.Fatalf("CreateIntent 应成功: %v", err)
	}
	if gateway.lastCurrency != "eur" {
		t.Errorf("币种应转小写，期望 eur，实际=%s", gateway.lastCurrency)
	}
}

func TestPaymentService_CreateIntent_NotOwner(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 50)
	seedStudent(m, "stu-2")

	_, err := svc.CreateIntent(context.Background(), "stu-2", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("他人报名创建支付意图应返回 ErrForbidden，实际: %v", err)
	}
}

func TestPaymentService_CreateIntent_FreeCourse(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 0)

	_, err := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	if !errors.Is(err, ErrNothingToPay) {
		t.Errorf("免费课程应返回 ErrNothingToPay，实际: %v", err)
	}
}

func TestPaymentService_CreateIntent_GatewayRejected(t *testing.T) {
	svc, m, gateway := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)
	gateway.createErr = errors.New("card declined")

	_, err := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	if !errors.Is(err, ErrGatewayRejected) {
		t.Fatalf("网关拒绝应返回 ErrGatewayRejected，实际: %v", err)
	}

	// 拒绝也要留痕：应落一条 failed 支付记录
	var failed int
	for _, p := range m.payments.payments {
		if p.EnrollmentID == "enr-1" && p.Status == model.PaymentFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("期望 1 条 failed 支付记录，实际=%d", failed)
	}
	if m.enrollments.enrollments["enr-1"].PaymentStatus != model.PaymentStatusPending {
		t.Errorf("网关拒绝不应改变报名支付状态")
	}
}

// ── Webhook 测试 ──

func webhookReq(eventType, intentID string) *dto.WebhookRequest {
	req := &dto.WebhookRequest{Type: eventType}
	req.Data.Object.ID = intentID
	return req
}

func TestPaymentService_HandleWebhook_Reconciles(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	resp, err := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	if err != nil {
		t.Fatalf("CreateIntent 应成功: %v", err)
	}

	if err := svc.HandleWebhook(context.Background(), webhookReq(webhookEventSucceeded, "pi_mock_1")); err != nil {
		t.Fatalf("HandleWebhook 应成功: %v", err)
	}

	p, _ := m.payments.GetByID(context.Background(), resp.PaymentID)
	if p.Status != model.PaymentCompleted {
		t.Errorf("对账后支付记录应为 completed，实际=%s", p.Status)
	}
	e := m.enrollments.enrollments["enr-1"]
	if e.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("对账后报名支付状态应为 paid，实际=%s", e.PaymentStatus)
	}
}

func TestPaymentService_HandleWebhook_IgnoresOtherEvents(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	resp, _ := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})

	if err := svc.HandleWebhook(context.Background(), webhookReq("payment_intent.payment_failed", "pi_mock_1")); err != nil {
		t.Fatalf("非 succeeded 事件应被忽略且不报错: %v", err)
	}

	p, _ := m.payments.GetByID(context.Background(), resp.PaymentID)
	if p.Status != model.PaymentPending {
		t.Errorf("被忽略的事件不应改变支付状态，实际=%s", p.Status)
	}
}

func TestPaymentService_HandleWebhook_Idempotent(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	resp, _ := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})

	for i := 0; i < 3; i++ {
		if err := svc.HandleWebhook(context.Background(), webhookReq(webhookEventSucceeded, "pi_mock_1")); err != nil {
			t.Fatalf("第 %d 次投递应成功: %v", i+1, err)
		}
	}

	p, _ := m.payments.GetByID(context.Background(), resp.PaymentID)
	if p.Status != model.PaymentCompleted {
		t.Errorf("重复投递后状态应保持 completed，实际=%s", p.Status)
	}
}

func TestPaymentService_HandleWebhook_Unmatched(t *testing.T) {
	svc, _, _ := setupTestPaymentService()

	err := svc.HandleWebhook(context.Background(), webhookReq(webhookEventSucceeded, "pi_unknown"))
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("未匹配的意图应返回 ErrPaymentNotFound，实际: %v", err)
	}
}

// ── Refund 测试 ──

func TestPaymentService_Refund_Success(t *testing.T) {
	svc, m, gateway := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	resp, _ := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	svc.HandleWebhook(context.Background(), webhookReq(webhookEventSucceeded, "pi_mock_1"))

	refunded, err := svc.Refund(context.Background(), resp.PaymentID)
	if err != nil {
		t.Fatalf("Refund 应成功: %v", err)
	}
	if refunded.Status != model.PaymentRefunded {
		t.Errorf("退款后状态应为 refunded，实际=%s", refunded.Status)
	}
	if len(gateway.refundedIDs) != 1 || gateway.refundedIDs[0] != "pi_mock_1" {
		t.Errorf("网关应收到 pi_mock_1 的退款请求，实际=%v", gateway.refundedIDs)
	}
	if m.enrollments.enrollments["enr-1"].PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("报名支付状态应同步为 refunded")
	}
}

func TestPaymentService_Refund_OnlyCompleted(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	// pending 支付不可退款
	resp, _ := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	_, err := svc.Refund(context.Background(), resp.PaymentID)
	if !errors.Is(err, ErrNotRefundable) {
		t.Errorf("pending 支付退款应返回 ErrNotRefundable，实际: %v", err)
	}

	// 已退款的支付不可再退
	svc.HandleWebhook(context.Background(), webhookReq(webhookEventSucceeded, "pi_mock_1"))
	if _, err := svc.Refund(context.Background(), resp.PaymentID); err != nil {
		t.Fatalf("首次退款应成功: %v", err)
	}
	_, err = svc.Refund(context.Background(), resp.PaymentID)
	if !errors.Is(err, ErrNotRefundable) {
		t.Errorf("重复退款应返回 ErrNotRefundable，实际: %v", err)
	}
}

func TestPaymentService_Refund_GatewayFailure(t *testing.T) {
	svc, m, gateway := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	resp, _ := svc.CreateIntent(context.Background(), "stu-1", model.RoleStudent, "enr-1", &dto.CreateIntentRequest{})
	svc.HandleWebhook(context.Background(), webhookReq(webhookEventSucceeded, "pi_mock_1"))
	gateway.refundErr = errors.New("refund unavailable")

	_, err := svc.Refund(context.Background(), resp.PaymentID)
	if !errors.Is(err, ErrGatewayRejected) {
		t.Fatalf("网关退款失败应返回 ErrGatewayRejected，实际: %v", err)
	}

	// 本地状态不动
	p, _ := m.payments.GetByID(context.Background(), resp.PaymentID)
	if p.Status != model.PaymentCompleted {
		t.Errorf("退款失败后支付状态应保持 completed，实际=%s", p.Status)
	}
	if m.enrollments.enrollments["enr-1"].PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("退款失败后报名支付状态应保持 paid")
	}
}

func TestPaymentService_Refund_NoTransactionID(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	// 手工录入的支付没有网关交易号
	created, err := svc.Create(context.Background(), &dto.CreatePaymentRequest{
		EnrollmentID: "enr-1",
		Amount:       100,
	})
	if err != nil {
		t.Fatalf("手工录入应成功: %v", err)
	}
	m.payments.payments[created.ID].Status = model.PaymentCompleted

	_, err = svc.Refund(context.Background(), created.ID)
	if !errors.Is(err, ErrNoTransactionID) {
		t.Errorf("无交易号退款应返回 ErrNoTransactionID，实际: %v", err)
	}
}

// ── Create（手工录入）测试 ──

func TestPaymentService_Create_PendingUntilReconciled(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)

	created, err := svc.Create(context.Background(), &dto.CreatePaymentRequest{
		EnrollmentID: "enr-1",
		Amount:       100,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if created.Status != model.PaymentPending {
		t.Errorf("手工录入应先为 pending，实际=%s", created.Status)
	}
	// 对账前报名支付状态不动
	if m.enrollments.enrollments["enr-1"].PaymentStatus != model.PaymentStatusPending {
		t.Errorf("对账前报名支付状态应保持 pending")
	}
}

func TestPaymentService_Create_EnrollmentNotFound(t *testing.T) {
	svc, _, _ := setupTestPaymentService()

	_, err := svc.Create(context.Background(), &dto.CreatePaymentRequest{
		EnrollmentID: "missing",
		Amount:       100,
	})
	if !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("期望 ErrEnrollmentNotFound，实际: %v", err)
	}
}

func TestPaymentService_Stats(t *testing.T) {
	svc, m, _ := setupTestPaymentService()
	seedEnrollment(m, "enr-1", "stu-1", "course-1", 100)
	seedEnrollment(m, "enr-2", "stu-2", "course-1", 100)

	svc.Create(context.Background(), &dto.CreatePaymentRequest{EnrollmentID: "enr-1", Amount: 100})
	svc.CreateIntent(context.Background(), "stu-2", model.RoleStudent, "enr-2", &dto.CreateIntentRequest{})
	svc.HandleWebhook(context.Background(), webhookReq(webhookEventSucceeded, "pi_mock_1"))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.TotalCount != 2 || stats.CompletedCount != 1 || stats.PendingCount != 1 {
		t.Errorf("统计不符: total=%d completed=%d pending=%d", stats.TotalCount, stats.CompletedCount, stats.PendingCount)
	}
	if stats.TotalAmount != 100 {
		t.Errorf("TotalAmount 应只计 completed，期望 100，实际=%v", stats.TotalAmount)
	}
}
