package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"vibin/apperrors"
)

const presignExpiry = 5 * time.Minute

// PhotoService issues presigned S3 URLs for profile photos.
type PhotoService struct {
	presigner *s3.PresignClient
	bucket    string
	now       func() time.Time
}

func NewPhotoService(client *s3.Client, bucket string) *PhotoService {
	return &PhotoService{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		now:       time.Now,
	}
}

// GenerateUploadURL generates a presigned URL for uploading a file. It
// returns the URL and the object key the photo will live under.
func (p *PhotoService) GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error) {
	if fileName == "" || fileType == "" {
		return "", "", apperrors.InvalidArg("fileName and fileType are required")
	}
	key := "profile-pics/" + p.now().UTC().Format("20060102150405") + "-" + path.Base(fileName)
	req, err := p.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, key, nil
}

// GenerateReadURL generates a presigned URL for reading a file
func (p *PhotoService) GenerateReadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", apperrors.InvalidArg("key is required")
	}
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return req.URL, nil
}
