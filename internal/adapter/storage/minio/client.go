package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/GoArmGo/TaskManager/internal/config"
)

const bucketWaitTimeout = 30 * time.Second

// Client это адаптер S3-совместимого хранилища (MinIO), реализует ports.FileStorage.
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	baseURL    string
	logger     *slog.Logger
}

// NewMinioClient создаёт клиента и при необходимости создаёт бакет.
func NewMinioClient(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	if cfg.MinioAccessKeyID == "" || cfg.MinioSecretAccessKey == "" || cfg.MinioBucketName == "" || cfg.MinioEndpoint == "" {
		return nil, errors.New("MinIO credentials (MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, MINIO_BUCKET_NAME, MINIO_ENDPOINT) must be set")
	}

	endpoint := endpointURL(cfg.MinioEndpoint, cfg.MinioUseSSL)

	cfgAws, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.MinioRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(cfgAws, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	c := &Client{
		s3Client:   s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: cfg.MinioBucketName,
		baseURL:    endpoint,
		logger:     logger,
	}
	if err := c.ensureBucket(ctx, cfg.MinioRegion); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureBucket проверяет бакет и создаёт его, если он отсутствует
func (c *Client) ensureBucket(ctx context.Context, region string) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	c.logger.Info("bucket not found, creating", "bucket", c.bucketName)
	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	// us-east-1 нельзя передавать как LocationConstraint
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket '%s': %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)}, bucketWaitTimeout); err != nil {
		return fmt.Errorf("failed waiting for bucket '%s' to be created: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created", "bucket", c.bucketName)
	return nil
}

// UploadFile загружает объект и возвращает его URL
func (c *Client) UploadFile(ctx context.Context, objectKey string, fileContent io.Reader, contentType string) (string, error) {
	start := time.Now()
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        fileContent,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s to bucket %s: %w", objectKey, c.bucketName, err)
	}

	c.logger.Info("object uploaded",
		"bucket", c.bucketName,
		"key", objectKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return objectURL(c.baseURL, c.bucketName, objectKey), nil
}

// DeleteFile удаляет объект из бакета.
func (c *Client) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", objectKey, c.bucketName, err)
	}
	return nil
}

func endpointURL(endpoint string, useSSL bool) string {
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// objectURL строит path-style URL объекта
func objectURL(baseURL, bucket, key string) string {
	u, err := url.JoinPath(baseURL, bucket, key)
	if err != nil {
		return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key)
	}
	return u
}
