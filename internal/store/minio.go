package store

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AudioStore stages generated speech responses in MinIO. Objects are
// request-scoped: they are written just before the response is streamed and
// removed by a best-effort cleanup afterwards.
type AudioStore struct {
	client *minio.Client
	bucket string
}

func NewAudioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*AudioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &AudioStore{client: client, bucket: bucket}, nil
}

// Put stores WAV bytes under the given object key.
func (s *AudioStore) Put(ctx context.Context, key string, data []byte) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "audio/wav",
	})
	return err
}

// Cleanup removes a staged object. Errors are logged and swallowed; cleanup
// is best-effort and never surfaced to the client.
func (s *AudioStore) Cleanup(ctx context.Context, key string) {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		log.Printf("audio cleanup %s: %v", key, err)
	}
}
