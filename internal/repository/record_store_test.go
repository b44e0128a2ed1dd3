package repository

import (
	"context"
	"learning_dashboard_backend/internal/model"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBadgerStore(t *testing.T) *BadgerRecordStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBadgerRecordStore(db)
}

func newGormStore(t *testing.T) *GormRecordStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "records.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.KVRecord{}))
	return NewGormRecordStore(db)
}

// 所有后端都必须满足同一份读写契约
func TestRecordStores_Contract(t *testing.T) {
	stores := map[string]func(t *testing.T) RecordStore{
		"memory": func(t *testing.T) RecordStore { return NewMemoryRecordStore() },
		"badger": func(t *testing.T) RecordStore { return newBadgerStore(t) },
		"gorm":   func(t *testing.T) RecordStore { return newGormStore(t) },
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := build(t)

			_, ok, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "k", `[1]`))
			v, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1]`, v)

			require.NoError(t, store.Set(ctx, "k", `[1,2]`))
			v, _, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, v)
		})
	}
}
