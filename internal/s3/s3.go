package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client архивирует превью appear-событий в объектное хранилище.
// Реализует broker.Sink: события без превью пропускаются.
type Client struct {
	client *minio.Client
	bucket string
}

func NewMinioClient(endpoint, accessKey, secretKey, bucket string) (*Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Client{client: client, bucket: bucket}, nil
}

func (c *Client) EnsureBucketExists(ctx context.Context, bucketName string) error {
	exists, err := c.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return c.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

// Deliver загружает превью появившегося объекта;
// путь в бакете: {label}/{date}_{time}_{track_id}.jpg
func (c *Client) Deliver(ev models.Event, _ []byte) error {
	appear, ok := ev.(models.AppearEvent)
	if !ok || appear.Thumbnail == "" {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(appear.Thumbnail)
	if err != nil {
		return fmt.Errorf("decode thumbnail: %w", err)
	}

	ctx := context.Background()
	if err := c.EnsureBucketExists(ctx, c.bucket); err != nil {
		return fmt.Errorf("bucket error: %w", err)
	}

	objectName := fmt.Sprintf("%s/%s_%s_%d.jpg",
		appear.Label, appear.Date, appear.Time, appear.TrackID)

	_, err = c.client.PutObject(
		ctx,
		c.bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: appear.Mime,
		},
	)
	if err != nil {
		return fmt.Errorf("upload error: %w", err)
	}

	return nil
}
