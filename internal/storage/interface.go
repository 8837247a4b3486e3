package storage

import (
	"eduviz-backend/internal/model"
)

type Storage interface {
	// 会话管理
	CreateSession(session *model.Session) error
	GetSession(sessionID string) (*model.Session, error)
	DeleteSession(sessionID string) error

	// 单会话同一时刻只允许一个未决请求
	BeginRequest(sessionID string) error
	EndRequest(sessionID string) error

	// 历史管理：最新在前，超过上限丢最旧
	AppendHistory(sessionID string, entry *model.HistoryEntry) error
	ListHistory(sessionID string) ([]*model.HistoryEntry, error)
	GetHistoryEntry(sessionID, entryID string) (*model.HistoryEntry, error)

	// 存储管理
	Init() error
	Close() error
}
