package repository

import (
	"context"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/util"
	"sync"
)

// QuizResultRepository 测验结果账本，只追加，按 ID 硬删除
type QuizResultRepository struct {
	Store RecordStore
	mu    sync.Mutex
}

func NewQuizResultRepository(store RecordStore) *QuizResultRepository {
	return &QuizResultRepository{Store: store}
}

func (r *QuizResultRepository) FindAll(ctx context.Context) []model.QuizResult {
	return loadLedger[model.QuizResult](ctx, r.Store, util.QuizResultLedgerKey)
}

func (r *QuizResultRepository) FindByID(ctx context.Context, id string) (*model.QuizResult, error) {
	for _, result := range r.FindAll(ctx) {
		if result.ID == id {
			found := result
			return &found, nil
		}
	}
	return nil, util.ErrQuizResultNotFound
}

func (r *QuizResultRepository) Create(ctx context.Context, result *model.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, err := loadLedgerForWrite[model.QuizResult](ctx, r.Store, util.QuizResultLedgerKey)
	if err != nil {
		return err
	}
	results = append(results, *result)
	return saveLedger(ctx, r.Store, util.QuizResultLedgerKey, results)
}

// Delete 删除指定结果，不存在时返回 false
func (r *QuizResultRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, err := loadLedgerForWrite[model.QuizResult](ctx, r.Store, util.QuizResultLedgerKey)
	if err != nil {
		return false, err
	}
	filtered := make([]model.QuizResult, 0, len(results))
	for _, result := range results {
		if result.ID != id {
			filtered = append(filtered, result)
		}
	}
	if len(filtered) == len(results) {
		return false, nil
	}
	if err := saveLedger(ctx, r.Store, util.QuizResultLedgerKey, filtered); err != nil {
		return false, err
	}
	return true, nil
}
