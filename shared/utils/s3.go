package utils

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// LogoUploader stores team logo images in S3. Uploads run behind a circuit
// breaker so a slow or down bucket cannot pile up requests.
type LogoUploader struct {
	uploader  *s3manager.Uploader
	bucket    string
	urlPrefix string
	breaker   *CircuitBreaker
}

// NewLogoUploader creates an uploader for the given region and bucket. An
// empty urlPrefix falls back to the standard S3 URL layout.
func NewLogoUploader(region, bucket, urlPrefix string) (*LogoUploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	if urlPrefix == "" {
		urlPrefix = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &LogoUploader{
		uploader:  s3manager.NewUploader(sess),
		bucket:    bucket,
		urlPrefix: urlPrefix,
		breaker:   NewCircuitBreaker(5, 30*time.Second),
	}, nil
}

// Upload stores the logo under a team-scoped key and returns its public URL.
func (lu *LogoUploader) Upload(teamID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	key := fmt.Sprintf("teams/%s/logo-%s%s", teamID, uuid.New().String()[:8], path.Ext(filename))

	err := lu.breaker.Call(func() error {
		_, uploadErr := lu.uploader.Upload(&s3manager.UploadInput{
			Bucket:      aws.String(lu.bucket),
			Key:         aws.String(key),
			Body:        body,
			ContentType: aws.String(contentType),
		})
		return uploadErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	return lu.urlPrefix + "/" + key, nil
}
