package notify

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config describes an S3-compatible bucket (MinIO in development).
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
	From         string
}

// S3Notifier drops each message into a bucket as an .eml object instead of
// sending it. Useful where no mail relay exists.
type S3Notifier struct {
	client objectPutter
	bucket string
	from   string
	now    func() time.Time
}

func NewS3Notifier(ctx context.Context, c S3Config) (*S3Notifier, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey, c.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Notifier{client: client, bucket: c.Bucket, from: c.From, now: time.Now}, nil
}

// Key layout: outbox/YYYY/MM/DD/<uuid>.eml
func (n *S3Notifier) objectKey(t time.Time) string {
	return path.Join("outbox", t.UTC().Format("2006/01/02"), uuid.NewString()+".eml")
}

func (n *S3Notifier) Deliver(ctx context.Context, to, subject, html string) error {
	now := n.now()
	msg, err := newMessage(n.from, to, subject, html, now)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return fmt.Errorf("error encoding message: %w", err)
	}

	_, err = n.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(n.bucket),
		Key:         aws.String(n.objectKey(now)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("message/rfc822"),
		Metadata:    map[string]string{"recipient": to},
	})
	if err != nil {
		return fmt.Errorf("error storing message in bucket %s: %w", n.bucket, err)
	}
	return nil
}
