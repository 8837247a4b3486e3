// Package engine 封装对外部生成模型的单次调用，上层只依赖这里的接口
package engine

import (
	"context"
	"errors"
)

var (
	ErrEmptyResponse = errors.New("engine returned empty response")
	ErrNoImage       = errors.New("engine returned no image payload")
)

// Image 是引擎返回的一张内联图片
type Image struct {
	MIMEType string
	Data     []byte
}

// Engine 是生成引擎的统一入口，每个方法对应一次模型调用，不做重试
type Engine interface {
	Name() string
	// GenerateText 带固定 system 指令的文本生成
	GenerateText(ctx context.Context, system, user string) (string, error)
	// GenerateImage 按描述性提示词生成一张图片
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
	// DescribeImage 按指令讲解一张图片
	DescribeImage(ctx context.Context, instruction string, img *Image) (string, error)
}
