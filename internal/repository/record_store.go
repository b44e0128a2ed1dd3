package repository

import (
	"context"
	"sync"
)

// RecordStore 同步的键值存储，值为序列化后的完整账本
// 读取不存在的键返回 ok=false，不视为错误
type RecordStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryRecordStore 进程内存储，用于测试和 memory 后端
type MemoryRecordStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{data: make(map[string]string)}
}

func (s *MemoryRecordStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryRecordStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}
