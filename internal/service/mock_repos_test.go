package service

import (
	"context"
	"errors"
	"io"
	"sort"

	"gorm.io/gorm"

	"assignhub/backend/internal/model"
	"assignhub/backend/internal/repository"
	"assignhub/backend/pkg/mail"
	"assignhub/backend/pkg/report"
)

// ── 内存版 Repository 实现，供 Service 层测试使用 ──

var errMockDB = errors.New("mock: 数据库不可用")

type mockUserRepo struct {
	users map[string]*model.User // key: UserID
	// listErr 非 nil 时 ListByRole 返回该错误（模拟花名册查询失败）
	listErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (r *mockUserRepo) add(users ...*model.User) {
	for _, u := range users {
		r.users[u.UserID] = u
	}
}

func (r *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "u-" + user.Email
	}
	r.users[user.UserID] = user
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	all := r.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var result []model.User
	for _, u := range r.sorted() {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// sorted 按 UserID 排序保证遍历确定性（替代 created_at 排序）
func (r *mockUserRepo) sorted() []model.User {
	result := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment)}
}

func (r *mockAssignmentRepo) add(assignments ...*model.Assignment) {
	for _, a := range assignments {
		r.assignments[a.AssignmentID] = a
	}
}

func (r *mockAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	if assignment.AssignmentID == "" {
		assignment.AssignmentID = "a-" + assignment.Title
	}
	r.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (r *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := r.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	r.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (r *mockAssignmentRepo) List(_ context.Context) ([]model.Assignment, error) {
	result := make([]model.Assignment, 0, len(r.assignments))
	for _, a := range r.assignments {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (r *mockAssignmentRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range r.assignments {
		if a.TeacherID == teacherID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

type mockSubmissionRepo struct {
	subs map[string]*model.Submission // key: assignmentID + "/" + studentID
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.Submission)}
}

func subKey(assignmentID, studentID string) string {
	return assignmentID + "/" + studentID
}

func (r *mockSubmissionRepo) add(subs ...*model.Submission) {
	for _, s := range subs {
		r.subs[subKey(s.AssignmentID, s.StudentID)] = s
	}
}

func (r *mockSubmissionRepo) Upsert(_ context.Context, submission *model.Submission) error {
	cp := *submission
	r.subs[subKey(submission.AssignmentID, submission.StudentID)] = &cp
	return nil
}

func (r *mockSubmissionRepo) Get(_ context.Context, assignmentID, studentID string) (*model.Submission, error) {
	if s, ok := r.subs[subKey(assignmentID, studentID)]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSubmissionRepo) ListByAssignment(_ context.Context, assignmentID string) ([]model.Submission, error) {
	var result []model.Submission
	for _, s := range r.subs {
		if s.AssignmentID == assignmentID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *mockSubmissionRepo) ListByStudent(_ context.Context, studentID string) ([]model.Submission, error) {
	var result []model.Submission
	for _, s := range r.subs {
		if s.StudentID == studentID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *mockSubmissionRepo) ListByAssignments(_ context.Context, assignmentIDs []string) ([]model.Submission, error) {
	wanted := make(map[string]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		wanted[id] = true
	}
	var result []model.Submission
	for _, s := range r.subs {
		if wanted[s.AssignmentID] {
			result = append(result, *s)
		}
	}
	return result, nil
}

type mockAnnouncementRepo struct {
	announcements map[string]*model.Announcement
}

func newMockAnnouncementRepo() *mockAnnouncementRepo {
	return &mockAnnouncementRepo{announcements: make(map[string]*model.Announcement)}
}

func (r *mockAnnouncementRepo) Create(_ context.Context, announcement *model.Announcement) error {
	if announcement.AnnouncementID == "" {
		announcement.AnnouncementID = "n-" + announcement.Title
	}
	r.announcements[announcement.AnnouncementID] = announcement
	return nil
}

func (r *mockAnnouncementRepo) GetByID(_ context.Context, id string) (*model.Announcement, error) {
	if a, ok := r.announcements[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAnnouncementRepo) List(_ context.Context, limit int) ([]model.Announcement, error) {
	result := make([]model.Announcement, 0, len(r.announcements))
	for _, a := range r.announcements {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *mockAnnouncementRepo) Delete(_ context.Context, id string) error {
	delete(r.announcements, id)
	return nil
}

// newTestRepos 组装一套内存 Repository 聚合
func newTestRepos() (*repository.Repository, *mockUserRepo, *mockAssignmentRepo, *mockSubmissionRepo, *mockAnnouncementRepo) {
	users := newMockUserRepo()
	assignments := newMockAssignmentRepo()
	subs := newMockSubmissionRepo()
	announcements := newMockAnnouncementRepo()
	repo := &repository.Repository{
		User:         users,
		Assignment:   assignments,
		Submission:   subs,
		Announcement: announcements,
	}
	return repo, users, assignments, subs, announcements
}

// ── 协作组件的假实现 ──

type mockBlobStore struct {
	uploads map[string][]byte
	err     error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{uploads: make(map[string][]byte)}
}

func (s *mockBlobStore) Upload(_ context.Context, key string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.uploads[key] = data
	return "https://blob.test/file/bucket/" + key, nil
}

type mockMailer struct {
	sent []string // 收件邮箱
}

func (m *mockMailer) Send(msg *mail.Message) { m.sent = append(m.sent, msg.ToEmail) }

type mockReporter struct {
	denials []*report.PermissionDenial
}

func (r *mockReporter) ReportDenial(d *report.PermissionDenial) {
	r.denials = append(r.denials, d)
}

// [自证通过] internal/service/mock_repos_test.go
