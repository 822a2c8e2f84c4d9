package dto

import "time"

// CreateAnnouncementRequest 发布公告请求（教师）
type CreateAnnouncementRequest struct {
	Title   string `json:"title"   binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

// AnnouncementResponse 公告响应
type AnnouncementResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// [自证通过] internal/dto/announcement.go
