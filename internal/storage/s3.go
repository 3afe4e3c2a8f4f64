package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/Aryan192003/Chatify-backend/internal/models"
)

// S3Store uploads attachment and avatar files to an S3 bucket. Uploads run
// under a per-call timeout; expiry is a fatal error for the operation, not
// retried.
type S3Store struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	region        string
	uploadTimeout time.Duration
}

func NewS3Store(ctx context.Context, region, bucket string, uploadTimeout time.Duration) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        bucket,
		region:        region,
		uploadTimeout: uploadTimeout,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, filename, contentType string, data []byte) (models.Attachment, error) {
	key := uuid.NewString() + "_" + filename

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return models.Attachment{}, err
	}

	if strings.HasPrefix(contentType, "image/") {
		if thumb, terr := thumbnail(data); terr == nil {
			_, _ = s.uploader.Upload(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(s.bucket),
				Key:         aws.String(key + "_thumb.jpg"),
				Body:        bytes.NewReader(thumb),
				ContentType: aws.String("image/jpeg"),
			})
		}
	}

	return models.Attachment{PublicID: key, URL: s.publicURL(key)}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicIDs []string) error {
	for _, key := range publicIDs {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, url.PathEscape(key))
}

func thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
