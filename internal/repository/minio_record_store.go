package repository

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioRecordStore 每个键对应存储桶中的一个 JSON 对象
type MinioRecordStore struct {
	Client *minio.Client
	Bucket string
}

func NewMinioRecordStore(client *minio.Client, bucket string) *MinioRecordStore {
	return &MinioRecordStore{Client: client, Bucket: bucket}
}

func objectName(key string) string {
	return "ledgers/" + key + ".json"
}

func (s *MinioRecordStore) Get(ctx context.Context, key string) (string, bool, error) {
	obj, err := s.Client.GetObject(ctx, s.Bucket, objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return "", false, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

func (s *MinioRecordStore) Set(ctx context.Context, key, value string) error {
	_, err := s.Client.PutObject(ctx, s.Bucket, objectName(key), strings.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}
