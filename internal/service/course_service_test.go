package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
)

func setupTestCourseService() (CourseService, *testMocks) {
	repo, m := newTestRepo()
	svc := NewCourseService(repo, zap.NewNop())
	return svc, m
}

func seedInstructor(m *testMocks, id string) {
	m.users.users[id] = &model.User{
		UserID:   id,
		Email:    id + "@example.com",
		FullName: "Instructor " + id,
		Role:     model.RoleInstructor,
		IsActive: true,
	}
}

func TestCourseService_Create_Success(t *testing.T) {
	svc, m := setupTestCourseService()
	seedInstructor(m, "ins-1")

	instructorID := "ins-1"
	start := "2026-09-01"
	end := "2026-12-20"
	resp, err := svc.Create(context.Background(), &dto.CreateCourseRequest{
		Title:        "French Pastry Fundamentals",
		InstructorID: &instructorID,
		Duration:     12,
		Price:        299.50,
		Capacity:     16,
		StartDate:    &start,
		EndDate:      &end,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Title != "French Pastry Fundamentals" {
		t.Errorf("标题不符: %s", resp.Title)
	}
	if !resp.IsActive {
		t.Error("新课程应为激活状态")
	}
	if resp.Instructor == nil || resp.Instructor.ID != "ins-1" {
		t.Errorf("应带讲师信息: %+v", resp.Instructor)
	}
	if resp.StartDate == nil || *resp.StartDate != "2026-09-01" {
		t.Errorf("开课日期不符: %v", resp.StartDate)
	}
	if resp.EnrolledCount != 0 {
		t.Errorf("新课程报名数应为 0，实际=%d", resp.EnrolledCount)
	}
}

func TestCourseService_Create_InstructorValidation(t *testing.T) {
	svc, m := setupTestCourseService()
	seedStudent(m, "stu-1")

	// 不存在的讲师
	missing := "missing"
	_, err := svc.Create(context.Background(), &dto.CreateCourseRequest{
		Title:        "Knife Skills",
		InstructorID: &missing,
		Capacity:     10,
	})
	if !errors.Is(err, ErrNotAnInstructor) {
		t.Errorf("不存在的讲师期望 ErrNotAnInstructor，实际: %v", err)
	}

	// 学员不可做讲师
	studentID := "stu-1"
	_, err = svc.Create(context.Background(), &dto.CreateCourseRequest{
		Title:        "Knife Skills",
		InstructorID: &studentID,
		Capacity:     10,
	})
	if !errors.Is(err, ErrNotAnInstructor) {
		t.Errorf("学员做讲师期望 ErrNotAnInstructor，实际: %v", err)
	}
}

func TestCourseService_Create_InvalidDateRange(t *testing.T) {
	svc, _ := setupTestCourseService()

	start := "2026-12-20"
	end := "2026-09-01"
	_, err := svc.Create(context.Background(), &dto.CreateCourseRequest{
		Title:     "Bread Baking",
		Capacity:  10,
		StartDate: &start,
		EndDate:   &end,
	})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("结束早于开始期望 ErrInvalidDateRange，实际: %v", err)
	}
}

func TestCourseService_Update_MergedDateValidation(t *testing.T) {
	svc, _ := setupTestCourseService()

	start := "2026-09-01"
	created, err := svc.Create(context.Background(), &dto.CreateCourseRequest{
		Title:     "Bread Baking",
		Capacity:  10,
		StartDate: &start,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 只改 end_date，需与已有 start_date 合并校验
	badEnd := "2026-08-01"
	_, err = svc.Update(context.Background(), created.ID, &dto.UpdateCourseRequest{EndDate: &badEnd})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}

	goodEnd := "2026-12-01"
	resp, err := svc.Update(context.Background(), created.ID, &dto.UpdateCourseRequest{EndDate: &goodEnd})
	if err != nil {
		t.Fatalf("合法结课日期应成功: %v", err)
	}
	if resp.EndDate == nil || *resp.EndDate != "2026-12-01" {
		t.Errorf("结课日期不符: %v", resp.EndDate)
	}
}

func TestCourseService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestCourseService()

	title := "New Title"
	_, err := svc.Update(context.Background(), "missing", &dto.UpdateCourseRequest{Title: &title})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestCourseService_Delete_BlockedByActiveEnrollments(t *testing.T) {
	svc, m := setupTestCourseService()
	seedCourse(m, "course-1", 10, true)
	seedStudent(m, "stu-1")
	m.enrollments.enrollments["enr-1"] = &model.Enrollment{
		EnrollmentID: "enr-1",
		StudentID:    "stu-1",
		CourseID:     "course-1",
		Status:       model.EnrollmentApproved,
	}

	err := svc.Delete(context.Background(), "course-1")
	if !errors.Is(err, ErrCourseHasStudents) {
		t.Errorf("有占位报名期望 ErrCourseHasStudents，实际: %v", err)
	}

	// 报名结课后不再占位，可删除
	m.enrollments.enrollments["enr-1"].Status = model.EnrollmentCompleted
	if err := svc.Delete(context.Background(), "course-1"); err != nil {
		t.Errorf("无占位报名时删除应成功: %v", err)
	}
}

func TestCourseService_GetByID_EnrolledCount(t *testing.T) {
	svc, m := setupTestCourseService()
	seedCourse(m, "course-1", 10, true)
	for i, status := range []string{
		model.EnrollmentPending,
		model.EnrollmentApproved,
		model.EnrollmentRejected,
		model.EnrollmentCompleted,
	} {
		m.enrollments.enrollments[string(rune('a'+i))] = &model.Enrollment{
			EnrollmentID: string(rune('a' + i)),
			StudentID:    "stu-x",
			CourseID:     "course-1",
			Status:       status,
		}
	}

	resp, err := svc.GetByID(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	// 只有 pending 与 approved 计入占位
	if resp.EnrolledCount != 2 {
		t.Errorf("期望 EnrolledCount=2，实际=%d", resp.EnrolledCount)
	}
}

func TestCourseService_List_AvailableOnly(t *testing.T) {
	svc, m := setupTestCourseService()
	seedCourse(m, "course-1", 10, true)
	seedCourse(m, "course-2", 10, false)

	result, total, err := svc.List(context.Background(), &dto.CourseListRequest{AvailableOnly: true})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 || result[0].ID != "course-1" {
		t.Errorf("AvailableOnly 过滤不符: total=%d %+v", total, result)
	}
}
