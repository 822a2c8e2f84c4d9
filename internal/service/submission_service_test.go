package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"assignhub/backend/internal/dto"
	"assignhub/backend/internal/model"
	"assignhub/backend/internal/realtime"
)

func newSubmissionFixture() (SubmissionService, *mockUserRepo, *mockAssignmentRepo, *mockSubmissionRepo, *mockBlobStore, *mockMailer, *mockReporter) {
	repo, users, assignments, subs, _ := newTestRepos()
	blob := newMockBlobStore()
	mailer := &mockMailer{}
	reporter := &mockReporter{}
	hub := realtime.NewHub(nil, zap.NewNop())
	svc := NewSubmissionService(repo, hub, blob, mailer, reporter, zap.NewNop())
	return svc, users, assignments, subs, blob, mailer, reporter
}

func testStudent(id string) *model.User {
	return &model.User{UserID: id, Name: "学生" + id, Email: id + "@test.local", Role: model.RoleStudent}
}

func testTeacher(id string) *model.User {
	return &model.User{UserID: id, Name: "教师" + id, Email: id + "@test.local", Role: model.RoleTeacher}
}

func testAssignment(id, teacherID string) *model.Assignment {
	return &model.Assignment{
		AssignmentID: id,
		Title:        "作业" + id,
		TeacherID:    teacherID,
		DueDate:      time.Now().Add(48 * time.Hour),
	}
}

func TestSubmit_FileMode(t *testing.T) {
	svc, users, assignments, _, blob, _, _ := newSubmissionFixture()
	student := testStudent("s1")
	users.add(student)
	assignments.add(testAssignment("a1", "t1"))

	row, err := svc.Submit(context.Background(), student, "a1", &SubmitInput{
		Mode:     dto.SubmitModeFile,
		FileName: "report.pdf",
		File:     strings.NewReader("内容"),
	})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	if row.Status != model.SubmissionStatusSubmitted {
		t.Errorf("期望状态 submitted，实际=%s", row.Status)
	}
	if row.SubmittedAt == nil {
		t.Error("SubmittedAt 应被填充")
	}
	// 文件按 submissions/<作业>/<学生>/<文件名> 存储
	if _, ok := blob.uploads["submissions/a1/s1/report.pdf"]; !ok {
		t.Errorf("文件未按预期路径上传: %v", blob.uploads)
	}
	if !strings.Contains(row.FileURL, "submissions/a1/s1/report.pdf") {
		t.Errorf("FileURL 应指向上传对象，实际=%s", row.FileURL)
	}
}

func TestSubmit_URLMode(t *testing.T) {
	svc, users, assignments, _, blob, _, _ := newSubmissionFixture()
	student := testStudent("s1")
	users.add(student)
	assignments.add(testAssignment("a1", "t1"))

	row, err := svc.Submit(context.Background(), student, "a1", &SubmitInput{
		Mode:    dto.SubmitModeURL,
		FileURL: "https://docs.example.com/share/xyz",
	})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	if row.FileURL != "https://docs.example.com/share/xyz" {
		t.Errorf("URL 模式应原样保存链接，实际=%s", row.FileURL)
	}
	if len(blob.uploads) != 0 {
		t.Error("URL 模式不应触发对象上传")
	}
}

func TestSubmit_RejectsMixedPayload(t *testing.T) {
	svc, users, assignments, _, _, _, _ := newSubmissionFixture()
	student := testStudent("s1")
	users.add(student)
	assignments.add(testAssignment("a1", "t1"))

	cases := []struct {
		name string
		in   *SubmitInput
	}{
		{"文件模式缺文件", &SubmitInput{Mode: dto.SubmitModeFile}},
		{"文件模式混入 URL", &SubmitInput{Mode: dto.SubmitModeFile, FileName: "f", File: strings.NewReader("x"), FileURL: "https://x"}},
		{"URL 模式缺链接", &SubmitInput{Mode: dto.SubmitModeURL}},
		{"URL 模式混入文件", &SubmitInput{Mode: dto.SubmitModeURL, FileURL: "https://x", File: strings.NewReader("x")}},
		{"未知模式", &SubmitInput{Mode: "both"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), student, "a1", tc.in); !errors.Is(err, ErrSubmitModeInvalid) {
				t.Errorf("期望 ErrSubmitModeInvalid，实际=%v", err)
			}
		})
	}
}

func TestSubmit_ResubmitOverwritesAndKeepsGrade(t *testing.T) {
	svc, users, assignments, subs, _, _, _ := newSubmissionFixture()
	student := testStudent("s1")
	users.add(student)
	assignments.add(testAssignment("a1", "t1"))

	earlier := time.Now().Add(-time.Hour)
	subs.add(&model.Submission{
		AssignmentID: "a1",
		StudentID:    "s1",
		StudentName:  "学生s1",
		FileURL:      "https://old/file",
		SubmittedAt:  &earlier,
		Status:       model.SubmissionStatusGraded,
		Grade:        "B",
		Feedback:     "可以更好",
	})

	row, err := svc.Submit(context.Background(), student, "a1", &SubmitInput{
		Mode:    dto.SubmitModeURL,
		FileURL: "https://new/file",
	})
	if err != nil {
		t.Fatalf("重交失败: %v", err)
	}

	// 重交整行覆盖：状态回到 submitted，历史评分随行带入
	if row.Status != model.SubmissionStatusSubmitted {
		t.Errorf("重交后状态应为 submitted，实际=%s", row.Status)
	}
	if row.Grade != "B" || row.Feedback != "可以更好" {
		t.Errorf("重交应带入历史评分: grade=%s feedback=%s", row.Grade, row.Feedback)
	}
	if row.FileURL != "https://new/file" {
		t.Errorf("载荷应被新提交覆盖，实际=%s", row.FileURL)
	}
	if !row.SubmittedAt.After(earlier) {
		t.Error("SubmittedAt 应更新为重交时间")
	}
}

func TestSubmit_AssignmentMissing(t *testing.T) {
	svc, users, _, _, _, _, _ := newSubmissionFixture()
	student := testStudent("s1")
	users.add(student)

	_, err := svc.Submit(context.Background(), student, "missing", &SubmitInput{
		Mode: dto.SubmitModeURL, FileURL: "https://x",
	})
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际=%v", err)
	}
}

func TestGrade_HappyPathNotifiesStudent(t *testing.T) {
	svc, users, assignments, subs, _, mailer, _ := newSubmissionFixture()
	teacher := testTeacher("t1")
	student := testStudent("s1")
	users.add(teacher, student)
	assignments.add(testAssignment("a1", "t1"))
	now := time.Now()
	subs.add(&model.Submission{
		AssignmentID: "a1", StudentID: "s1", StudentName: "学生s1",
		FileURL: "https://x/f", SubmittedAt: &now, Status: model.SubmissionStatusSubmitted,
	})

	row, err := svc.Grade(context.Background(), teacher, "a1", "s1", &dto.GradeRequest{Grade: "A", Feedback: "很好"})
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}

	if row.Status != model.SubmissionStatusGraded || row.Grade != "A" {
		t.Errorf("评分后行不正确: %+v", row)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "s1@test.local" {
		t.Errorf("应向学生发送评分通知，实际=%v", mailer.sent)
	}
}

func TestGrade_PendingRowRejected(t *testing.T) {
	svc, users, assignments, _, _, _, _ := newSubmissionFixture()
	teacher := testTeacher("t1")
	users.add(teacher, testStudent("s1"))
	assignments.add(testAssignment("a1", "t1"))

	// s1 尚未提交（无记录，隐式 pending），评分必须被拒
	_, err := svc.Grade(context.Background(), teacher, "a1", "s1", &dto.GradeRequest{Grade: "A"})
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("期望 ErrSubmissionNotFound，实际=%v", err)
	}
}

func TestGrade_NonOwnerReportedAndRejected(t *testing.T) {
	svc, users, assignments, subs, _, mailer, reporter := newSubmissionFixture()
	owner := testTeacher("t1")
	intruder := testTeacher("t2")
	users.add(owner, intruder, testStudent("s1"))
	assignments.add(testAssignment("a1", "t1"))
	now := time.Now()
	subs.add(&model.Submission{
		AssignmentID: "a1", StudentID: "s1", SubmittedAt: &now,
		Status: model.SubmissionStatusSubmitted,
	})

	_, err := svc.Grade(context.Background(), intruder, "a1", "s1", &dto.GradeRequest{Grade: "F"})
	if !errors.Is(err, ErrNotAssignmentOwner) {
		t.Fatalf("期望 ErrNotAssignmentOwner，实际=%v", err)
	}

	// 越权尝试要带完整上下文上报
	if len(reporter.denials) != 1 {
		t.Fatalf("期望 1 次越权上报，实际=%d", len(reporter.denials))
	}
	d := reporter.denials[0]
	if d.Operation != "grade" || d.ActorID != "t2" || d.Payload == nil {
		t.Errorf("上报上下文不完整: %+v", d)
	}
	if len(mailer.sent) != 0 {
		t.Error("越权评分不应发送通知")
	}
}

func TestListForAssignment_ReconciledView(t *testing.T) {
	svc, users, assignments, subs, _, _, _ := newSubmissionFixture()
	teacher := testTeacher("t1")
	users.add(teacher, testStudent("s1"), testStudent("s2"), testStudent("s3"))
	assignments.add(testAssignment("a1", "t1"))
	now := time.Now()
	subs.add(&model.Submission{
		AssignmentID: "a1", StudentID: "s2", StudentName: "学生s2",
		SubmittedAt: &now, Status: model.SubmissionStatusSubmitted, FileURL: "https://x/f",
	})

	view, err := svc.ListForAssignment(context.Background(), teacher, "a1")
	if err != nil {
		t.Fatalf("查询对账视图失败: %v", err)
	}

	if view.TotalStudents != 3 || view.SubmittedCount != 1 {
		t.Errorf("期望 1/3 已提交，实际=%d/%d", view.SubmittedCount, view.TotalStudents)
	}
	if len(view.Rows) != 3 {
		t.Fatalf("期望 3 行，实际=%d", len(view.Rows))
	}
	statuses := map[string]string{}
	for _, row := range view.Rows {
		statuses[row.StudentID] = row.Status
	}
	if statuses["s1"] != model.SubmissionStatusPending ||
		statuses["s2"] != model.SubmissionStatusSubmitted ||
		statuses["s3"] != model.SubmissionStatusPending {
		t.Errorf("状态分布不正确: %v", statuses)
	}
}

func TestListForAssignment_RosterFailureIsNotEmptyRoster(t *testing.T) {
	svc, users, assignments, _, _, _, _ := newSubmissionFixture()
	teacher := testTeacher("t1")
	users.add(teacher)
	assignments.add(testAssignment("a1", "t1"))
	users.listErr = errMockDB

	// 花名册查询失败必须报错，绝不渲染为"0 名学生"
	_, err := svc.ListForAssignment(context.Background(), teacher, "a1")
	if !errors.Is(err, ErrRosterUnavailable) {
		t.Errorf("期望 ErrRosterUnavailable，实际=%v", err)
	}
}

func TestListForAssignment_NonOwnerRejected(t *testing.T) {
	svc, users, assignments, _, _, _, reporter := newSubmissionFixture()
	users.add(testTeacher("t1"))
	intruder := testTeacher("t2")
	users.add(intruder)
	assignments.add(testAssignment("a1", "t1"))

	_, err := svc.ListForAssignment(context.Background(), intruder, "a1")
	if !errors.Is(err, ErrNotAssignmentOwner) {
		t.Fatalf("期望 ErrNotAssignmentOwner，实际=%v", err)
	}
	if len(reporter.denials) != 1 || reporter.denials[0].Operation != "list" {
		t.Errorf("越权查看应被上报: %+v", reporter.denials)
	}
}

func TestTeacherDashboard_Counts(t *testing.T) {
	svc, users, assignments, subs, _, _, _ := newSubmissionFixture()
	teacher := testTeacher("t1")
	users.add(teacher, testStudent("s1"), testStudent("s2"))
	assignments.add(testAssignment("a1", "t1"), testAssignment("a2", "t1"))
	// 他人作业的提交不应计入
	assignments.add(testAssignment("a9", "t9"))
	now := time.Now()
	subs.add(
		&model.Submission{AssignmentID: "a1", StudentID: "s1", SubmittedAt: &now, Status: model.SubmissionStatusSubmitted},
		&model.Submission{AssignmentID: "a2", StudentID: "s1", SubmittedAt: &now, Status: model.SubmissionStatusGraded},
		&model.Submission{AssignmentID: "a9", StudentID: "s2", SubmittedAt: &now, Status: model.SubmissionStatusSubmitted},
	)

	resp, err := svc.TeacherDashboard(context.Background(), teacher)
	if err != nil {
		t.Fatalf("查询工作台失败: %v", err)
	}

	if resp.StudentCount != 2 || resp.AssignmentCount != 2 {
		t.Errorf("基础统计不正确: %+v", resp)
	}
	if resp.ToGradeCount != 1 || resp.GradedCount != 1 {
		t.Errorf("评分统计不正确: to_grade=%d graded=%d", resp.ToGradeCount, resp.GradedCount)
	}
	if len(resp.RecentSubmissions) != 2 {
		t.Errorf("最近提交应只含本教师作业，实际=%d 条", len(resp.RecentSubmissions))
	}
}

func TestTeacherDashboard_RecentOrderDeterministic(t *testing.T) {
	svc, users, assignments, subs, _, _, _ := newSubmissionFixture()
	teacher := testTeacher("t1")
	users.add(teacher, testStudent("s1"), testStudent("s2"), testStudent("s3"))
	assignments.add(testAssignment("a1", "t1"))
	now := time.Now()
	subs.add(
		// 缺失时间戳的行（历史脏数据）不得破坏排序，排在有时间戳的行之后
		&model.Submission{AssignmentID: "a1", StudentID: "s3", Status: model.SubmissionStatusSubmitted},
		&model.Submission{AssignmentID: "a1", StudentID: "s2", Status: model.SubmissionStatusSubmitted},
		&model.Submission{AssignmentID: "a1", StudentID: "s1", SubmittedAt: &now, Status: model.SubmissionStatusSubmitted},
	)

	resp, err := svc.TeacherDashboard(context.Background(), teacher)
	if err != nil {
		t.Fatalf("查询工作台失败: %v", err)
	}

	if len(resp.RecentSubmissions) != 3 {
		t.Fatalf("期望 3 条最近提交，实际=%d", len(resp.RecentSubmissions))
	}
	got := []string{
		resp.RecentSubmissions[0].StudentID,
		resp.RecentSubmissions[1].StudentID,
		resp.RecentSubmissions[2].StudentID,
	}
	if got[0] != "s1" || got[1] != "s2" || got[2] != "s3" {
		t.Errorf("排序应为有时间戳优先、缺失时按学生 ID，实际=%v", got)
	}
}

// [自证通过] internal/service/submission_service_test.go
