package engine

import (
	"context"
	"errors"
	"strings"

	"eduviz-backend/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEngine 通过官方 SDK 调用 Gemini；文本与图片用不同的模型名
type GeminiEngine struct {
	apiKey     string
	textModel  string
	imageModel string
}

func NewGeminiEngine(cfg config.GeminiConfig) *GeminiEngine {
	return &GeminiEngine{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		textModel:  strings.TrimSpace(cfg.TextModel),
		imageModel: strings.TrimSpace(cfg.ImageModel),
	}
}

func (e *GeminiEngine) Name() string { return "gemini" }

func (e *GeminiEngine) GenerateText(ctx context.Context, system, user string) (string, error) {
	if e.apiKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.textModel)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(txt), nil
}

func (e *GeminiEngine) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	if e.apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.imageModel)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	img := firstBlob(resp)
	if img == nil {
		return nil, ErrNoImage
	}
	return img, nil
}

func (e *GeminiEngine) DescribeImage(ctx context.Context, instruction string, img *Image) (string, error) {
	if e.apiKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.textModel)
	parts := []genai.Part{
		genai.Text(instruction),
		&genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(txt), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok && strings.TrimSpace(string(t)) != "" {
				return string(t)
			}
		}
	}
	return ""
}

func firstBlob(resp *genai.GenerateContentResponse) *Image {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			switch b := p.(type) {
			case genai.Blob:
				if len(b.Data) > 0 {
					return &Image{MIMEType: b.MIMEType, Data: b.Data}
				}
			case *genai.Blob:
				if b != nil && len(b.Data) > 0 {
					return &Image{MIMEType: b.MIMEType, Data: b.Data}
				}
			}
		}
	}
	return nil
}
