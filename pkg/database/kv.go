package database

import (
	"context"
	"learning_dashboard_backend/internal/config"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// InitBadger 打开嵌入式 KV 存储，in_memory 模式下不落盘
func InitBadger(cfg *config.BadgerConfig) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	} else if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, err
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	log.Println("Badger store opened")
	return db, nil
}

// InitMinio 创建 MinIO 客户端，存储桶不存在时自动创建
func InitMinio(ctx context.Context, cfg *config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	log.Println("MinIO connection established")
	return client, nil
}
