package model

import (
	"time"

	"github.com/google/uuid"
)

// KVRecord 记录存储在关系型数据库中的一行，一个键对应一份完整的序列化账本
// swagger:model
type KVRecord struct {
	RecordKey   string    `gorm:"column:record_key;primaryKey;size:191" json:"key"`
	RecordValue string    `gorm:"column:record_value;type:text" json:"value"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}

func GenerateUUID() string {
	return uuid.New().String()
}
