package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eduviz-backend/internal/engine"
	"eduviz-backend/internal/model"
	"eduviz-backend/internal/storage"
	"eduviz-backend/internal/utils"
	"eduviz-backend/pkg/logger"

	"github.com/google/uuid"
)

// 本地校验错误：未发起任何模型调用就拒绝提交
var (
	ErrPromptRequired = errors.New("prompt is required when no photo is attached")
	ErrPromptTooShort = errors.New("prompt must be at least 3 characters")
	ErrInvalidDomain  = errors.New("unknown domain")
	ErrInvalidPhoto   = errors.New("photo must be a base64 data URI")
)

// RefusalSentence 模型拒绝越界请求时返回的固定句子
const RefusalSentence = "I don't do that. I only create educational and scientific visuals."

// refusalLeadIn 拒绝检测只匹配固定起始短语，容忍模型在句尾的细微偏差
const refusalLeadIn = "I don't do that"

// explainFallback 讲解流程失败时的统一兜底话术
const explainFallback = "Sorry, I couldn't explain this image. Please try again."

// visualRewriteSystem 改写步骤的固定 system 指令：越界则原样回拒绝句，
// 否则产出一条丰富的图像描述提示词
const visualRewriteSystem = `You are the prompt writer for an educational visuals generator.
The generator only creates educational and scientific visuals for these domains:
Biology, Physics, Chemistry, Geography & Environment, Space Science, Engineering, Computer Science, Mathematics.
If the requested concept does not fit the requested domain, or asks for memes, celebrities,
fictional characters or NSFW content, reply with exactly this sentence and nothing else:
I don't do that. I only create educational and scientific visuals.
Otherwise rewrite the concept into one rich, detailed, visually descriptive prompt for a clear
scientific illustration suitable for students. Reply with the rewritten prompt only.`

type GenerationService struct {
	engine engine.Engine
	store  storage.Storage
}

func NewGenerationService(e engine.Engine, store storage.Storage) *GenerationService {
	return &GenerationService{
		engine: e,
		store:  store,
	}
}

func (s *GenerationService) GetStorage() storage.Storage {
	return s.store
}

func (s *GenerationService) CreateSession() (*model.SessionResponse, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		History:   make([]*model.HistoryEntry, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateSession(session); err != nil {
		return nil, err
	}

	return &model.SessionResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (s *GenerationService) DeleteSession(sessionID string) error {
	return s.store.DeleteSession(sessionID)
}

// Generate 是提交入口：先本地校验，再按"有图优先"路由到两条流程之一。
// 同一会话同一时刻只处理一个请求，流程结算（成功或失败）后才放行下一个。
func (s *GenerationService) Generate(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	domain := model.Domain(req.Domain)
	if !domain.Valid() {
		return nil, ErrInvalidDomain
	}

	if !req.HasPhoto() {
		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			return nil, ErrPromptRequired
		}
		if len([]rune(prompt)) < 3 {
			return nil, ErrPromptTooShort
		}
	}

	if err := s.store.BeginRequest(req.SessionID); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.store.EndRequest(req.SessionID); err != nil {
			logger.Warnf("结束请求标记失败: session=%s err=%v", req.SessionID, err)
		}
	}()

	var kind, result string
	if req.HasPhoto() {
		// 带图提交一律走讲解流程，prompt 被忽略
		photo, mime, err := utils.DecodeDataURI(req.PhotoDataURI)
		if err != nil {
			return nil, ErrInvalidPhoto
		}
		kind = model.EntryKindExplanation
		result = s.explainImage(ctx, &engine.Image{
			MIMEType: utils.PickMIME("", mime, photo),
			Data:     photo,
		}, domain)
	} else {
		kind = model.EntryKindVisual
		result = s.generateVisual(ctx, strings.TrimSpace(req.Prompt), domain)
	}

	resp := &model.GenerateResponse{
		Kind:      kind,
		Result:    result,
		IsError:   model.IsErrorResult(result),
		Timestamp: time.Now().Unix(),
	}

	// 带错误标记的结果不进历史
	if !resp.IsError {
		entry := &model.HistoryEntry{
			ID:        uuid.New().String(),
			Kind:      kind,
			Domain:    domain,
			Result:    result,
			CreatedAt: time.Now(),
		}
		if kind == model.EntryKindVisual {
			entry.Prompt = strings.TrimSpace(req.Prompt)
		} else {
			entry.PhotoDataURI = req.PhotoDataURI
		}
		if err := s.store.AppendHistory(req.SessionID, entry); err != nil {
			return nil, err
		}
		resp.EntryID = entry.ID
	}

	return resp, nil
}

// generateVisual 是改写-再生成两段式管线：第一段让文本模型执行守门并
// 改写提示词，第二段用改写结果出图。任何失败都归一为带标记的拒绝句。
func (s *GenerationService) generateVisual(ctx context.Context, prompt string, domain model.Domain) string {
	user := fmt.Sprintf("Domain: %s\nConcept: %s", domain, prompt)

	rewritten, err := s.engine.GenerateText(ctx, visualRewriteSystem, user)
	if err != nil {
		logger.Errorf("改写提示词失败: engine=%s err=%v", s.engine.Name(), err)
		return model.ErrorMarker + " " + RefusalSentence
	}
	if strings.HasPrefix(rewritten, refusalLeadIn) {
		return model.ErrorMarker + " " + RefusalSentence
	}

	img, err := s.engine.GenerateImage(ctx, rewritten)
	if err != nil {
		logger.Errorf("图像生成失败: engine=%s err=%v", s.engine.Name(), err)
		return model.ErrorMarker + " " + RefusalSentence
	}

	return utils.MakeDataURI(img.MIMEType, img.Data)
}

// explainImage 把图片与学科一起交给模型做通俗讲解
func (s *GenerationService) explainImage(ctx context.Context, img *engine.Image, domain model.Domain) string {
	instruction := fmt.Sprintf(`You are a friendly science teacher. Explain the concept shown in this image
in accessible language for a curious student. The image belongs to the domain of %s.
Keep the explanation clear, accurate and encouraging.`, domain)

	text, err := s.engine.DescribeImage(ctx, instruction, img)
	if err != nil {
		logger.Errorf("图像讲解失败: engine=%s err=%v", s.engine.Name(), err)
		return model.ErrorMarker + " " + explainFallback
	}
	if strings.HasPrefix(text, refusalLeadIn) {
		return model.ErrorMarker + " " + RefusalSentence
	}

	return text
}

func (s *GenerationService) ListHistory(sessionID string) ([]*model.HistoryEntry, error) {
	return s.store.ListHistory(sessionID)
}

// GetHistoryEntry 用于回放：纯读取，不触发任何模型调用
func (s *GenerationService) GetHistoryEntry(sessionID, entryID string) (*model.HistoryEntry, error) {
	return s.store.GetHistoryEntry(sessionID, entryID)
}
