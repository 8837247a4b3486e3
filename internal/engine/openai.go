package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"eduviz-backend/internal/config"
	"eduviz-backend/internal/utils"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngine 走 OpenAI 兼容接口：chat 出文本，images 出图，vision 讲图
type OpenAIEngine struct {
	client     *openai.Client
	model      string
	imageModel string
}

func NewOpenAIEngine(cfg config.OpenAIConfig) *OpenAIEngine {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = utils.NewHTTPClient(cfg.Timeout)
	}

	return &OpenAIEngine{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
}

func (e *OpenAIEngine) Name() string { return "openai" }

func (e *OpenAIEngine) GenerateText(ctx context.Context, system, user string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	txt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

func (e *OpenAIEngine) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := e.client.CreateImage(ctx, openai.ImageRequest{
		Model:          e.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, errors.New("bad base64 in image response")
	}
	// images 接口固定返回 PNG
	return &Image{MIMEType: "image/png", Data: data}, nil
}

func (e *OpenAIEngine) DescribeImage(ctx context.Context, instruction string, img *Image) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: instruction},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    utils.MakeDataURI(img.MIMEType, img.Data),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	txt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}
