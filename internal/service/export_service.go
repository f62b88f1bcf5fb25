package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEnrollments = errors.New("course has no enrollments to export")
	ErrExportNoSchedules   = errors.New("course has no active schedules to export")
	ErrExportGenerateFail  = errors.New("failed to generate export file")
)

// RRULE BYDAY 映射，索引与 day_of_week 一致（0=周日）
var icsByDay = []string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// ExportService 导出业务接口
//
// 设计说明：
//   - 名册导出为 Excel (.xlsx)，供讲师/管理员下载
//   - 课程时间表导出为 iCalendar (.ics)，学员可导入日历应用
//   - 均以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出课程报名名册为 Excel
	ExportRoster(ctx context.Context, courseID string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出课程时间表为 iCalendar
	ExportCalendar(ctx context.Context, courseID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportRoster 导出课程报名名册
//
// 输出格式：
//   - 标题行：课程名 — Roster
//   - 表头: # | Student | Email | Status | Payment | Enrolled At
//   - 按报名时间升序列出全部报名
func (s *exportService) ExportRoster(ctx context.Context, courseID string) (*bytes.Buffer, string, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}

	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程报名失败", zap.Error(err))
		return nil, "", err
	}
	if len(enrollments) == 0 {
		return nil, "", ErrExportNoEnrollments
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "C", 34)
	f.SetColWidth(sheetName, "D", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — Roster", course.Title))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"#", "Student", "Email", "Status", "Payment", "Enrolled At"}
	for i, h := range headers {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetName, cellRef, h)
		f.SetCellStyle(sheetName, cellRef, cellRef, headerStyle)
	}

	// 数据行
	for i := range enrollments {
		e := &enrollments[i]
		row := i + 3

		name, email := "", ""
		if e.Student != nil {
			name = e.Student.FullName
			email = e.Student.Email
		}

		values := []interface{}{
			i + 1,
			name,
			email,
			e.Status,
			e.PaymentStatus,
			e.EnrollmentDate.Format("2006-01-02 15:04"),
		}
		for j, v := range values {
			cellRef, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheetName, cellRef, v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("roster_%s.xlsx", sanitizeFilename(course.Title))
	return buf, filename, nil
}

// ExportCalendar 导出课程激活时间表为 iCalendar (RFC 5545)
//
// 每个激活时间段生成一个 VEVENT：
//   - 周期性时段带 FREQ=WEEKLY 的 RRULE，截止到时段/课程结束日期
//   - 首次发生日从时段（或课程）起始日期推算到对应星期几
func (s *exportService) ExportCalendar(ctx context.Context, courseID string) (*bytes.Buffer, string, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}

	schedules, err := s.repo.Schedule.ListActiveByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程时间表失败", zap.Error(err))
		return nil, "", err
	}
	if len(schedules) == 0 {
		return nil, "", ErrExportNoSchedules
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Culinary Academy//Course Calendar//EN")

	now := time.Now()
	for i := range schedules {
		sc := &schedules[i]

		start, end, ok := firstOccurrence(sc, course)
		if !ok {
			s.logger.Warn("时间表时间字段无法解析，跳过",
				zap.String("schedule_id", sc.ScheduleID),
				zap.String("start_time", sc.StartTime))
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@culinary-academy", sc.ScheduleID))
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(course.Title)
		if sc.Location != nil {
			event.SetLocation(*sc.Location)
		}
		if course.Description != nil {
			event.SetDescription(*course.Description)
		}

		if sc.IsRecurring {
			rrule := fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", icsByDay[sc.DayOfWeek])
			if until := recurrenceEnd(sc, course); until != nil {
				rrule += ";UNTIL=" + until.UTC().Format("20060102T150405Z")
			}
			event.AddRrule(rrule)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("schedule_%s.ics", sanitizeFilename(course.Title))
	return buf, filename, nil
}

// firstOccurrence 计算时段的首次发生时间
// 基准日取时段起始日期，缺省时退回课程开课日，再缺省则取当天；
// 自基准日向后找到对应星期几，与 HH:MM 墙上时间组合
func firstOccurrence(sc *model.Schedule, course *model.Course) (time.Time, time.Time, bool) {
	startHour, startMin, ok := parseClock(sc.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	endHour, endMin, ok := parseClock(sc.EndTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	base := time.Now()
	if sc.StartDate != nil {
		base = *sc.StartDate
	} else if course.StartDate != nil {
		base = *course.StartDate
	}

	day := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.Local)
	for day.Weekday() != time.Weekday(sc.DayOfWeek) {
		day = day.AddDate(0, 0, 1)
	}

	start := day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute)
	end := day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute)
	return start, end, true
}

// recurrenceEnd 周期时段的截止日期：时段结束日期优先，其次课程结束日期
func recurrenceEnd(sc *model.Schedule, course *model.Course) *time.Time {
	if sc.EndDate != nil {
		end := sc.EndDate.AddDate(0, 0, 1)
		return &end
	}
	if course.EndDate != nil {
		end := course.EndDate.AddDate(0, 0, 1)
		return &end
	}
	return nil
}

// parseClock 解析 "HH:MM"
func parseClock(v string) (int, int, bool) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// sanitizeFilename 将标题转为安全的文件名片段
func sanitizeFilename(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "course"
	}
	return b.String()
}
