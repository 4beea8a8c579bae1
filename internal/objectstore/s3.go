package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner defines the interface for presigning S3 requests.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	UploadTTL       time.Duration
	MaxBytes        int64
}

// S3Store keeps objects in a bucket. Upload handles are presigned PUT URLs,
// so clients normally send bytes straight to the bucket.
type S3Store struct {
	client    S3API
	presigner Presigner
	bucket    string
	prefix    string
	ttl       time.Duration
	maxBytes  int64
	uploads   *pendingUploads
	now       func() time.Time
}

// NewS3 builds a store from the default AWS config chain. Static
// credentials and a custom endpoint (MinIO, LocalStack) are optional.
func NewS3(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3WithClient(client, s3.NewPresignClient(client), opts), nil
}

func NewS3WithClient(client S3API, presigner Presigner, opts S3Options) *S3Store {
	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Store{
		client:    client,
		presigner: presigner,
		bucket:    opts.Bucket,
		prefix:    prefix,
		ttl:       opts.UploadTTL,
		maxBytes:  opts.MaxBytes,
		uploads:   newPendingUploads(opts.UploadTTL),
		now:       time.Now,
	}
}

// IssueUploadHandle presigns a PUT that carries the owner as object
// metadata. The metadata header is signed, so the client has to send it
// unchanged for the bucket to accept the upload.
func (s *S3Store) IssueUploadHandle(ctx context.Context, ownerID string) (UploadHandle, error) {
	objectPath := NewObjectPath()
	key, err := s.key(objectPath)
	if err != nil {
		return UploadHandle{}, err
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Metadata: map[string]string{ownerMetadataKey: ownerID},
	}, func(o *s3.PresignOptions) { o.Expires = s.ttl })
	if err != nil {
		return UploadHandle{}, fmt.Errorf("presign upload: %w", err)
	}

	expiresAt := s.now().Add(s.ttl)
	s.uploads.issue(objectPath, ownerID, expiresAt)
	return UploadHandle{
		UploadURL:  req.URL,
		ObjectPath: objectPath,
		ExpiresAt:  expiresAt,
		Headers:    map[string]string{"x-amz-meta-" + ownerMetadataKey: ownerID},
	}, nil
}

// Put uploads through this server for clients that cannot reach the bucket.
func (s *S3Store) Put(ctx context.Context, ownerID, objectPath string, body io.Reader, contentType string) (Info, error) {
	key, err := s.key(objectPath)
	if err != nil {
		return Info{}, err
	}
	if !s.uploads.pending(objectPath, ownerID) {
		return Info{}, ErrUploadNotFound
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	// The SDK needs a seekable body or a known length; buffering within the
	// upload limit gives it both.
	reader := body
	if s.maxBytes > 0 {
		reader = io.LimitReader(body, s.maxBytes+1)
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return Info{}, fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(payload)) > s.maxBytes {
		return Info{}, ErrTooLarge
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String(contentType),
		Metadata:      map[string]string{ownerMetadataKey: ownerID},
	})
	if err != nil {
		return Info{}, fmt.Errorf("put object: %w", err)
	}
	s.uploads.complete(objectPath)

	return s.Stat(ctx, objectPath)
}

func (s *S3Store) Open(ctx context.Context, objectPath string) (io.ReadCloser, Info, error) {
	key, err := s.key(objectPath)
	if err != nil {
		return nil, Info{}, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, Info{}, mapS3Error("get object", err)
	}

	name, _ := objectName(objectPath)
	info := Info{
		Path:        objectPath,
		Name:        name,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: contentTypeOr(out.ContentType),
		Owner:       out.Metadata[ownerMetadataKey],
		ModTime:     aws.ToTime(out.LastModified).UTC(),
	}
	return out.Body, info, nil
}

func (s *S3Store) Stat(ctx context.Context, objectPath string) (Info, error) {
	key, err := s.key(objectPath)
	if err != nil {
		return Info{}, err
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Info{}, mapS3Error("head object", err)
	}

	name, _ := objectName(objectPath)
	return Info{
		Path:        objectPath,
		Name:        name,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: contentTypeOr(out.ContentType),
		Owner:       out.Metadata[ownerMetadataKey],
		ModTime:     aws.ToTime(out.LastModified).UTC(),
	}, nil
}

// Delete reports ErrObjectNotFound for a missing key. S3 itself treats
// deleting a missing key as success, hence the HEAD first.
func (s *S3Store) Delete(ctx context.Context, objectPath string) error {
	if _, err := s.Stat(ctx, objectPath); err != nil {
		return err
	}
	key, _ := s.key(objectPath)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapS3Error("delete object", err)
	}
	return nil
}

func (s *S3Store) key(objectPath string) (string, error) {
	name, err := objectName(objectPath)
	if err != nil {
		return "", err
	}
	return s.prefix + UploadsDir + "/" + name, nil
}

func mapS3Error(op string, err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return ErrObjectNotFound
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return ErrObjectNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func contentTypeOr(value *string) string {
	if v := aws.ToString(value); v != "" {
		return v
	}
	return defaultContentType
}
