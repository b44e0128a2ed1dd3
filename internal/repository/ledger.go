package repository

import (
	"context"
	"fmt"
	"learning_dashboard_backend/pkg/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// loadLedger 读取并反序列化账本，存储缺失、读取失败或内容损坏时返回空账本
func loadLedger[T any](ctx context.Context, store RecordStore, key string) []T {
	items, err := loadLedgerForWrite[T](ctx, store, key)
	if err != nil {
		logger.Log.Warn("Failed to read ledger, treating as empty", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	return items
}

// loadLedgerForWrite 供读改写路径使用：缺失或损坏视为空账本，存储读取错误原样返回
func loadLedgerForWrite[T any](ctx context.Context, store RecordStore, key string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Log.Warn("Corrupted ledger, treating as empty", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveLedger[T any](ctx context.Context, store RecordStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal ledger %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write ledger %s: %w", key, err)
	}
	return nil
}
