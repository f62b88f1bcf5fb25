package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/repository"
	"github.com/firasabed78/culinary--academy/pkg/payment"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users        map[string]*model.User
	ownedRecords int64
	seq          int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, req *dto.UserListRequest) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if req.Role != "" && u.Role != req.Role {
			continue
		}
		if req.IsActive != nil && u.IsActive != *req.IsActive {
			continue
		}
		if req.Keyword != "" && !strings.Contains(u.FullName, req.Keyword) && !strings.Contains(u.Email, req.Keyword) {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "password_hash":
			u.PasswordHash = v.(string)
		case "full_name":
			u.FullName = v.(string)
		case "email":
			u.Email = v.(string)
		case "role":
			u.Role = v.(string)
		case "is_active":
			u.IsActive = v.(bool)
		case "phone":
			s := v.(string)
			u.Phone = &s
		case "address":
			s := v.(string)
			u.Address = &s
		case "profile_picture":
			s := v.(string)
			u.ProfilePicture = &s
		}
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CountOwnedRecords(_ context.Context, _ string) (int64, error) {
	return m.ownedRecords, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	users   *mockUserRepo
	seq     int
}

func newMockCourseRepo(users *mockUserRepo) *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course), users: users}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.seq++
		course.CourseID = fmt.Sprintf("course-%d", m.seq)
	}
	course.CreatedAt = time.Now()
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetWithInstructor(ctx context.Context, id string) (*model.Course, error) {
	c, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.InstructorID != nil && m.users != nil {
		if u, ok := m.users.users[*c.InstructorID]; ok {
			c.Instructor = u
		}
	}
	return c, nil
}

func (m *mockCourseRepo) List(_ context.Context, req *dto.CourseListRequest) ([]model.Course, int64, error) {
	var result []model.Course
	for _, c := range m.courses {
		if req.Keyword != "" && !strings.Contains(c.Title, req.Keyword) {
			continue
		}
		if req.InstructorID != nil && (c.InstructorID == nil || *c.InstructorID != *req.InstructorID) {
			continue
		}
		if req.AvailableOnly && !c.IsActive {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, int64(len(result)), nil
}

func (m *mockCourseRepo) ListStartingOn(_ context.Context, day time.Time) ([]model.Course, error) {
	target := day.Format("2006-01-02")
	var result []model.Course
	for _, c := range m.courses {
		if c.IsActive && c.StartDate != nil && c.StartDate.Format("2006-01-02") == target {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	c, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			c.Title = v.(string)
		case "description":
			s := v.(string)
			c.Description = &s
		case "instructor_id":
			s := v.(string)
			c.InstructorID = &s
		case "duration":
			c.Duration = v.(int)
		case "price":
			c.Price = v.(float64)
		case "capacity":
			c.Capacity = v.(int)
		case "is_active":
			c.IsActive = v.(bool)
		case "start_date":
			t := v.(time.Time)
			c.StartDate = &t
		case "end_date":
			t := v.(time.Time)
			c.EndDate = &t
		}
	}
	return nil
}

func (m *mockCourseRepo) SoftDelete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment
	users       *mockUserRepo
	courses     *mockCourseRepo
	seq         int
}

func newMockEnrollmentRepo(users *mockUserRepo, courses *mockCourseRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{
		enrollments: make(map[string]*model.Enrollment),
		users:       users,
		courses:     courses,
	}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	if enrollment.EnrollmentID == "" {
		m.seq++
		enrollment.EnrollmentID = fmt.Sprintf("enr-%d", m.seq)
	}
	m.enrollments[enrollment.EnrollmentID] = enrollment
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetWithRelations(ctx context.Context, id string) (*model.Enrollment, error) {
	e, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.users != nil {
		if u, ok := m.users.users[e.StudentID]; ok {
			e.Student = u
		}
	}
	if m.courses != nil {
		if c, ok := m.courses.courses[e.CourseID]; ok {
			e.Course = c
		}
	}
	return e, nil
}

func (m *mockEnrollmentRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) List(_ context.Context, req *dto.EnrollmentListRequest) ([]model.Enrollment, int64, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if req.CourseID != nil && e.CourseID != *req.CourseID {
			continue
		}
		if req.StudentID != nil && e.StudentID != *req.StudentID {
			continue
		}
		if req.Status != "" && e.Status != req.Status {
			continue
		}
		if req.PaymentStatus != "" && e.PaymentStatus != req.PaymentStatus {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrollmentID < result[j].EnrollmentID })
	return result, int64(len(result)), nil
}

func (m *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID != courseID {
			continue
		}
		copied := *e
		if m.users != nil {
			if u, ok := m.users.users[e.StudentID]; ok {
				copied.Student = u
			}
		}
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrollmentID < result[j].EnrollmentID })
	return result, nil
}

func (m *mockEnrollmentRepo) CountActiveByCourse(_ context.Context, courseID string) (int64, error) {
	var count int64
	for _, e := range m.enrollments {
		if e.CourseID == courseID && (e.Status == model.EnrollmentPending || e.Status == model.EnrollmentApproved) {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollmentRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, e := range m.enrollments {
		counts[e.Status]++
	}
	return counts, nil
}

func (m *mockEnrollmentRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	e, ok := m.enrollments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			e.Status = v.(string)
		case "payment_status":
			e.PaymentStatus = v.(string)
		case "notes":
			s := v.(string)
			e.Notes = &s
		}
	}
	return nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, id string) error {
	delete(m.enrollments, id)
	return nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	payments map[string]*model.Payment
	seq      int
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	if p.PaymentID == "" {
		m.seq++
		p.PaymentID = fmt.Sprintf("pay-%d", m.seq)
	}
	m.payments[p.PaymentID] = p
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) GetByTransactionID(_ context.Context, transactionID string) (*model.Payment, error) {
	for _, p := range m.payments {
		if p.TransactionID != nil && *p.TransactionID == transactionID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) List(_ context.Context, req *dto.PaymentListRequest) ([]model.Payment, int64, error) {
	var result []model.Payment
	for _, p := range m.payments {
		if req.EnrollmentID != nil && p.EnrollmentID != *req.EnrollmentID {
			continue
		}
		if req.Status != "" && p.Status != req.Status {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PaymentID < result[j].PaymentID })
	return result, int64(len(result)), nil
}

func (m *mockPaymentRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	p, ok := m.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			p.Status = v.(string)
		case "payment_date":
			p.PaymentDate = v.(time.Time)
		}
	}
	return nil
}

func (m *mockPaymentRepo) Delete(_ context.Context, id string) error {
	delete(m.payments, id)
	return nil
}

func (m *mockPaymentRepo) Stats(_ context.Context) (*dto.PaymentStatsResponse, error) {
	stats := &dto.PaymentStatsResponse{}
	for _, p := range m.payments {
		stats.TotalCount++
		switch p.Status {
		case model.PaymentPending:
			stats.PendingCount++
		case model.PaymentCompleted:
			stats.CompletedCount++
			stats.TotalAmount += p.Amount
		case model.PaymentFailed:
			stats.FailedCount++
		case model.PaymentRefunded:
			stats.RefundedCount++
		}
	}
	return stats, nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	courses   *mockCourseRepo
	seq       int
}

func newMockScheduleRepo(courses *mockCourseRepo) *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule), courses: courses}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	if schedule.ScheduleID == "" {
		m.seq++
		schedule.ScheduleID = fmt.Sprintf("sched-%d", m.seq)
	}
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetWithCourse(ctx context.Context, id string) (*model.Schedule, error) {
	s, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.courses != nil {
		if c, ok := m.courses.courses[s.CourseID]; ok {
			s.Course = c
		}
	}
	return s, nil
}

func (m *mockScheduleRepo) List(_ context.Context, req *dto.ScheduleListRequest) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if req.CourseID != nil && s.CourseID != *req.CourseID {
			continue
		}
		if req.DayOfWeek != nil && s.DayOfWeek != *req.DayOfWeek {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduleID < result[j].ScheduleID })
	return result, nil
}

func (m *mockScheduleRepo) ListActiveByCourse(_ context.Context, courseID string) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.CourseID == courseID && s.IsActive {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduleID < result[j].ScheduleID })
	return result, nil
}

func (m *mockScheduleRepo) FindOverlapping(_ context.Context, courseID string, dayOfWeek int, startTime, endTime, excludeID string) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.ScheduleID == excludeID || s.CourseID != courseID || s.DayOfWeek != dayOfWeek || !s.IsActive {
			continue
		}
		if s.StartTime < endTime && startTime < s.EndTime {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	s, ok := m.schedules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "day_of_week":
			s.DayOfWeek = v.(int)
		case "start_time":
			s.StartTime = v.(string)
		case "end_time":
			s.EndTime = v.(string)
		case "location":
			str := v.(string)
			s.Location = &str
		case "is_recurring":
			s.IsRecurring = v.(bool)
		case "is_active":
			s.IsActive = v.(bool)
		case "start_date":
			t := v.(time.Time)
			s.StartDate = &t
		case "end_date":
			t := v.(time.Time)
			s.EndDate = &t
		}
	}
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct {
	documents map[string]*model.Document
	seq       int
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{documents: make(map[string]*model.Document)}
}

func (m *mockDocumentRepo) Create(_ context.Context, document *model.Document) error {
	if document.DocumentID == "" {
		m.seq++
		document.DocumentID = fmt.Sprintf("doc-%d", m.seq)
	}
	m.documents[document.DocumentID] = document
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (*model.Document, error) {
	if d, ok := m.documents[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) List(_ context.Context, userID string, req *dto.DocumentListRequest) ([]model.Document, int64, error) {
	var result []model.Document
	for _, d := range m.documents {
		if userID != "" && d.UserID != userID {
			continue
		}
		if req.DocumentType != "" && d.DocumentType != req.DocumentType {
			continue
		}
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DocumentID < result[j].DocumentID })
	return result, int64(len(result)), nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id string) error {
	delete(m.documents, id)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications map[string]*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		m.seq++
		notification.NotificationID = fmt.Sprintf("ntf-%d", m.seq)
	}
	notification.CreatedAt = time.Now()
	m.notifications[notification.NotificationID] = notification
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, req *dto.NotificationListRequest) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if req.UnreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].NotificationID < result[j].NotificationID })
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) error {
	n, ok := m.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var affected int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			affected++
		}
	}
	return affected, nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id string) error {
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationRepo) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	var affected int64
	for id, n := range m.notifications {
		if n.UserID == userID {
			delete(m.notifications, id)
			affected++
		}
	}
	return affected, nil
}

// ── 测试环境组装 ──

type testMocks struct {
	users         *mockUserRepo
	courses       *mockCourseRepo
	enrollments   *mockEnrollmentRepo
	payments      *mockPaymentRepo
	schedules     *mockScheduleRepo
	documents     *mockDocumentRepo
	notifications *mockNotificationRepo
}

func newTestRepo() (*repository.Repository, *testMocks) {
	users := newMockUserRepo()
	courses := newMockCourseRepo(users)
	m := &testMocks{
		users:         users,
		courses:       courses,
		enrollments:   newMockEnrollmentRepo(users, courses),
		payments:      newMockPaymentRepo(),
		schedules:     newMockScheduleRepo(courses),
		documents:     newMockDocumentRepo(),
		notifications: newMockNotificationRepo(),
	}
	repo := &repository.Repository{
		User:         m.users,
		Course:       m.courses,
		Enrollment:   m.enrollments,
		Payment:      m.payments,
		Schedule:     m.schedules,
		Document:     m.documents,
		Notification: m.notifications,
	}
	return repo, m
}

// ── Mock 支付网关 ──

type mockGateway struct {
	createErr     error
	refundErr     error
	intentSeq     int
	lastAmount    int64
	lastCurrency  string
	lastMetadata  map[string]string
	refundedIDs   []string
}

func (g *mockGateway) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.intentSeq++
	g.lastAmount = amountMinor
	g.lastCurrency = currency
	g.lastMetadata = metadata
	return &payment.Intent{
		ID:           fmt.Sprintf("pi_mock_%d", g.intentSeq),
		ClientSecret: fmt.Sprintf("pi_mock_%d_secret", g.intentSeq),
		Status:       "requires_payment_method",
	}, nil
}

func (g *mockGateway) RefundIntent(_ context.Context, intentID string) (*payment.Refund, error) {
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refundedIDs = append(g.refundedIDs, intentID)
	return &payment.Refund{ID: "re_mock_1", Status: "succeeded"}, nil
}

// ── Mock 邮件发送器 ──

type mockMailer struct {
	sent []string // "to|subject"
	err  error
}

func (m *mockMailer) Send(to, subject, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

// ── Mock 文件存储 ──

type mockStorage struct {
	files   map[string][]byte
	saveErr error
	seq     int
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string][]byte)}
}

func (s *mockStorage) Save(fileName string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.seq++
	path := fmt.Sprintf("uploads/%d_%s", s.seq, fileName)
	s.files[path] = data
	return path, nil
}

func (s *mockStorage) Open(path string) (io.ReadCloser, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *mockStorage) Remove(path string) error {
	delete(s.files, path)
	return nil
}
