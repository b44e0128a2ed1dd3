package repository

import (
	"context"
	"errors"
	"learning_dashboard_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRecordStore 把每个键存成 kv_records 表中的一行
type GormRecordStore struct {
	DB *gorm.DB
}

func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{DB: db}
}

func (s *GormRecordStore) Get(ctx context.Context, key string) (string, bool, error) {
	var rec model.KVRecord
	err := s.DB.WithContext(ctx).Where("record_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.RecordValue, true, nil
}

func (s *GormRecordStore) Set(ctx context.Context, key, value string) error {
	rec := model.KVRecord{RecordKey: key, RecordValue: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"record_value", "updated_at"}),
	}).Create(&rec).Error
}
