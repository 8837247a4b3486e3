package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eduviz-backend/internal/engine"
	"eduviz-backend/internal/model"
	"eduviz-backend/internal/service"
	"eduviz-backend/internal/storage"
	"eduviz-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "text")
}

type stubEngine struct {
	textResp     string
	img          *engine.Image
	describeResp string
	calls        int
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) GenerateText(ctx context.Context, system, user string) (string, error) {
	s.calls++
	return s.textResp, nil
}

func (s *stubEngine) GenerateImage(ctx context.Context, prompt string) (*engine.Image, error) {
	s.calls++
	if s.img == nil {
		return nil, engine.ErrNoImage
	}
	return s.img, nil
}

func (s *stubEngine) DescribeImage(ctx context.Context, instruction string, img *engine.Image) (string, error) {
	s.calls++
	return s.describeResp, nil
}

func newTestRouter(t *testing.T, eng *stubEngine) *gin.Engine {
	t.Helper()
	store := storage.NewMemoryStorage(0, 0)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	h := NewGenerateHandler(service.NewGenerationService(eng, store))

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/domains", h.ListDomains)
		api.POST("/generate", h.Generate)
		api.POST("/session", h.CreateSession)
		api.DELETE("/session/:session_id", h.DeleteSession)
		api.GET("/history/:session_id", h.ListHistory)
		api.GET("/history/:session_id/entries/:entry_id", h.GetHistoryEntry)
	}
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestListDomains(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	w := doJSON(router, http.MethodGet, "/api/domains", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Domains []string `json:"domains"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Domains, 8)
	assert.Equal(t, "Biology", resp.Domains[0])
	assert.Equal(t, "Mathematics", resp.Domains[7])
}

func TestGenerateVisual(t *testing.T) {
	eng := &stubEngine{
		textResp: "a labeled diagram of a plant cell",
		img:      &engine.Image{MIMEType: "image/png", Data: []byte{1, 2, 3}},
	}
	router := newTestRouter(t, eng)
	sessionID := createSession(t, router)

	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{
		"session_id": sessionID,
		"prompt":     "The process of photosynthesis",
		"domain":     "Biology",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.EntryKindVisual, resp.Kind)
	assert.False(t, resp.IsError)
	assert.True(t, strings.HasPrefix(resp.Result, "data:image/png;base64,"))
	assert.NotEmpty(t, resp.EntryID)
}

func TestGeneratePhotoRoutesToExplanation(t *testing.T) {
	eng := &stubEngine{describeResp: "This circuit shows a voltage divider."}
	router := newTestRouter(t, eng)
	sessionID := createSession(t, router)

	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{
		"session_id":     sessionID,
		"prompt":         "ignored",
		"photo_data_uri": "data:image/png;base64,AQIDBA==",
		"domain":         "Physics",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.EntryKindExplanation, resp.Kind)
	assert.Equal(t, "This circuit shows a voltage divider.", resp.Result)
}

func TestGenerateValidationError(t *testing.T) {
	eng := &stubEngine{}
	router := newTestRouter(t, eng)
	sessionID := createSession(t, router)

	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{
		"session_id": sessionID,
		"prompt":     "",
		"domain":     "Biology",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "prompt", resp["field"])
	assert.Zero(t, eng.calls, "validation errors must not reach the engine")
}

func TestGenerateUnknownSession(t *testing.T) {
	router := newTestRouter(t, &stubEngine{textResp: "x", img: &engine.Image{MIMEType: "image/png", Data: []byte{1}}})

	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{
		"session_id": "nope",
		"prompt":     "photosynthesis",
		"domain":     "Biology",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryReplay(t *testing.T) {
	eng := &stubEngine{
		textResp: "rewritten",
		img:      &engine.Image{MIMEType: "image/png", Data: []byte{7}},
	}
	router := newTestRouter(t, eng)
	sessionID := createSession(t, router)

	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{
		"session_id": sessionID,
		"prompt":     "the water cycle",
		"domain":     "Geography & Environment",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var genResp model.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &genResp))
	callsAfterGenerate := eng.calls

	w = doJSON(router, http.MethodGet, "/api/history/"+sessionID+"/entries/"+genResp.EntryID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entry model.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, "the water cycle", entry.Prompt)
	assert.Equal(t, genResp.Result, entry.Result)
	assert.Equal(t, callsAfterGenerate, eng.calls, "replay must not call the engine")

	w = doJSON(router, http.MethodGet, "/api/history/"+sessionID+"/entries/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSession(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	sessionID := createSession(t, router)

	w := doJSON(router, http.MethodDelete, "/api/session/"+sessionID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/history/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
