package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioService keeps infected uploads out of the public store.
type MinioService struct {
	Client     *minio.Client
	BucketName string
}

var minioInstance *MinioService

func InitializeMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool) error {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("[MinIO] created bucket: %s", bucket)
	}

	minioInstance = &MinioService{
		Client:     client,
		BucketName: bucket,
	}

	log.Println("[MinIO] connected")
	return nil
}

func GetMinioService() *MinioService {
	return minioInstance
}

func (m *MinioService) CheckConnection(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("minio service not initialized")
	}
	_, err := m.Client.BucketExists(ctx, m.BucketName)
	return err
}

// QuarantineObjectName is where an infected file of author is kept.
func QuarantineObjectName(author, fileID, image string) string {
	return path.Join(author, fileID, path.Base(image))
}

// Quarantine stores an infected file and returns its object name.
func (m *MinioService) Quarantine(ctx context.Context, author, fileID, image string, r io.Reader, size int64, contentType string) (string, error) {
	objectName := QuarantineObjectName(author, fileID, image)
	_, err := m.Client.PutObject(ctx, m.BucketName, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"author":  author,
			"file-id": fileID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to quarantine %s: %w", objectName, err)
	}
	log.Printf("[MinIO] quarantined %s", objectName)
	return objectName, nil
}

// DeleteObjectsByPrefix removes every object under prefix and returns how
// many were removed.
func (m *MinioService) DeleteObjectsByPrefix(ctx context.Context, prefix string) (int, error) {
	log.Printf("[MinIO] deleting prefix: %s (bucket: %s)", prefix, m.BucketName)

	var objects []minio.ObjectInfo
	for obj := range m.Client.ListObjects(ctx, m.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			log.Printf("[MinIO] list error: %v", obj.Err)
			return 0, obj.Err
		}
		objects = append(objects, obj)
	}

	if len(objects) == 0 {
		log.Printf("[MinIO] no objects found with prefix: %s", prefix)
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(objects))
	for _, obj := range objects {
		objectsCh <- obj
	}
	close(objectsCh)

	for removeErr := range m.Client.RemoveObjects(ctx, m.BucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil {
			log.Printf("[MinIO] failed to delete object %s: %v", removeErr.ObjectName, removeErr.Err)
			return 0, removeErr.Err
		}
	}

	log.Printf("[MinIO] deleted %d objects", len(objects))
	return len(objects), nil
}
