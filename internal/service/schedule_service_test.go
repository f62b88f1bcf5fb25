package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/internal/dto"
)

func setupTestScheduleService() (ScheduleService, *testMocks) {
	repo, m := newTestRepo()
	svc := NewScheduleService(repo, zap.NewNop())
	return svc, m
}

func scheduleReq(courseID string, day int, start, end string) *dto.CreateScheduleRequest {
	return &dto.CreateScheduleRequest{
		CourseID:  courseID,
		DayOfWeek: &day,
		StartTime: start,
		EndTime:   end,
	}
}

func TestScheduleService_Create_Success(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	resp, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00"))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.DayOfWeek != 1 || resp.StartTime != "09:00" || resp.EndTime != "10:00" {
		t.Errorf("时段不符: %+v", resp)
	}
	if !resp.IsActive {
		t.Error("新建时间表应为激活状态")
	}
	if !resp.IsRecurring {
		t.Error("IsRecurring 默认应为 true")
	}
}

func TestScheduleService_Create_CourseNotFound(t *testing.T) {
	svc, _ := setupTestScheduleService()

	_, err := svc.Create(context.Background(), scheduleReq("missing", 1, "09:00", "10:00"))
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestScheduleService_Create_InvalidTimeRange(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	cases := [][2]string{
		{"10:00", "09:00"}, // 结束早于开始
		{"09:00", "09:00"}, // 零长度
	}
	for _, c := range cases {
		_, err := svc.Create(context.Background(), scheduleReq("course-1", 1, c[0], c[1]))
		if !errors.Is(err, ErrInvalidTimeRange) {
			t.Errorf("时段 %s-%s 期望 ErrInvalidTimeRange，实际: %v", c[0], c[1], err)
		}
	}
}

func TestScheduleService_Create_Overlap(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	if _, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00")); err != nil {
		t.Fatalf("首个时段应成功: %v", err)
	}

	// [09:30,10:30) 与 [09:00,10:00) 相交
	_, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:30", "10:30"))
	if !errors.Is(err, ErrScheduleOverlap) {
		t.Errorf("期望 ErrScheduleOverlap，实际: %v", err)
	}

	// 完全包含也算冲突
	_, err = svc.Create(context.Background(), scheduleReq("course-1", 1, "08:00", "12:00"))
	if !errors.Is(err, ErrScheduleOverlap) {
		t.Errorf("包含时段期望 ErrScheduleOverlap，实际: %v", err)
	}
}

func TestScheduleService_Create_TouchingEndpointsAllowed(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	if _, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00")); err != nil {
		t.Fatalf("首个时段应成功: %v", err)
	}

	// 端点相接不算冲突
	if _, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "10:00", "11:00")); err != nil {
		t.Errorf("紧接的时段应允许: %v", err)
	}
	if _, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "08:00", "09:00")); err != nil {
		t.Errorf("前接的时段应允许: %v", err)
	}
}

func TestScheduleService_Create_DifferentScopeNoConflict(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)
	seedCourse(m, "course-2", 10, true)

	if _, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00")); err != nil {
		t.Fatalf("首个时段应成功: %v", err)
	}

	// 不同星期几不冲突
	if _, err := svc.Create(context.Background(), scheduleReq("course-1", 2, "09:00", "10:00")); err != nil {
		t.Errorf("不同 day_of_week 应允许: %v", err)
	}
	// 不同课程不冲突
	if _, err := svc.Create(context.Background(), scheduleReq("course-2", 1, "09:00", "10:00")); err != nil {
		t.Errorf("不同课程的同时段应允许: %v", err)
	}
}

func TestScheduleService_Update_ExcludesSelf(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	created, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00"))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 在自身时段内微调不应与自己冲突
	newStart := "09:15"
	resp, err := svc.Update(context.Background(), created.ID, &dto.UpdateScheduleRequest{StartTime: &newStart})
	if err != nil {
		t.Fatalf("调整自身时段应成功: %v", err)
	}
	if resp.StartTime != "09:15" {
		t.Errorf("期望 StartTime=09:15，实际=%s", resp.StartTime)
	}
}

func TestScheduleService_Update_OverlapWithOther(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00"))
	second, _ := svc.Create(context.Background(), scheduleReq("course-1", 1, "11:00", "12:00"))

	// 把第二个时段移入第一个时段
	newStart := "09:30"
	newEnd := "10:30"
	_, err := svc.Update(context.Background(), second.ID, &dto.UpdateScheduleRequest{StartTime: &newStart, EndTime: &newEnd})
	if !errors.Is(err, ErrScheduleOverlap) {
		t.Errorf("期望 ErrScheduleOverlap，实际: %v", err)
	}
}

func TestScheduleService_Update_MergedValidation(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	created, _ := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00"))

	// 只改 end_time 使其早于现有 start_time
	newEnd := "08:00"
	_, err := svc.Update(context.Background(), created.ID, &dto.UpdateScheduleRequest{EndTime: &newEnd})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("期望 ErrInvalidTimeRange，实际: %v", err)
	}
}

func TestScheduleService_Delete(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)

	created, _ := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00"))

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("删除后查询期望 ErrScheduleNotFound，实际: %v", err)
	}

	// 删除后时段释放
	if _, err := svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00")); err != nil {
		t.Errorf("删除后同时段应可重建: %v", err)
	}
}

func TestScheduleService_List_Filter(t *testing.T) {
	svc, m := setupTestScheduleService()
	seedCourse(m, "course-1", 10, true)
	seedCourse(m, "course-2", 10, true)

	svc.Create(context.Background(), scheduleReq("course-1", 1, "09:00", "10:00"))
	svc.Create(context.Background(), scheduleReq("course-2", 3, "14:00", "16:00"))

	courseID := "course-1"
	result, err := svc.List(context.Background(), &dto.ScheduleListRequest{CourseID: &courseID})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 1 || result[0].CourseID != "course-1" {
		t.Errorf("按课程过滤不符: %+v", result)
	}
}
