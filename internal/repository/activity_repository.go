package repository

import (
	"context"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/util"
	"sync"
)

type ActivityRepository struct {
	Store RecordStore
	mu    sync.Mutex
}

// NewActivityRepository 创建活动账本仓库实例
func NewActivityRepository(store RecordStore) *ActivityRepository {
	return &ActivityRepository{Store: store}
}

// FindAll 返回完整账本，读取失败时返回空切片
func (r *ActivityRepository) FindAll(ctx context.Context) []model.ActivityRecord {
	return loadLedger[model.ActivityRecord](ctx, r.Store, util.ActivityLedgerKey)
}

// Update 读取完整账本、修改后整体写回，整个过程在进程内串行执行；读取失败时不写入
func (r *ActivityRepository) Update(ctx context.Context, mutate func([]model.ActivityRecord) []model.ActivityRecord) ([]model.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := loadLedgerForWrite[model.ActivityRecord](ctx, r.Store, util.ActivityLedgerKey)
	if err != nil {
		return nil, err
	}
	records := mutate(current)
	if err := saveLedger(ctx, r.Store, util.ActivityLedgerKey, records); err != nil {
		return nil, err
	}
	return records, nil
}
