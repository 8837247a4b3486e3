package model

import (
	"strings"
	"time"
)

// ErrorMarker 是失败/拒绝结果的固定前缀，带该前缀的结果不进历史
const ErrorMarker = "❌"

// 历史条目的两种类型
const (
	EntryKindVisual      = "visual"
	EntryKindExplanation = "explanation"
)

// MaxHistoryEntries 历史列表上限，超出时丢弃最旧的条目
const MaxHistoryEntries = 50

type GenerateResponse struct {
	EntryID   string `json:"entry_id,omitempty"` // 仅成功并入史时返回
	Kind      string `json:"kind"`
	Result    string `json:"result"`
	IsError   bool   `json:"is_error"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryEntry 按 Kind 区分两种请求+结果的组合；
// visual 填 Prompt，explanation 填 PhotoDataURI
type HistoryEntry struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Prompt       string    `json:"prompt,omitempty"`
	PhotoDataURI string    `json:"photo_data_uri,omitempty"`
	Domain       Domain    `json:"domain"`
	Result       string    `json:"result"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	ID        string          `json:"id"`
	History   []*HistoryEntry `json:"history"` // 最新在前
	InFlight  bool            `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type SessionResponse struct {
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
	EntryCount int       `json:"entry_count"`
}

// IsErrorResult 判断结果串是否为归一化后的失败/拒绝
func IsErrorResult(result string) bool {
	return strings.HasPrefix(result, ErrorMarker)
}
