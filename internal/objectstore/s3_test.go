package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

type fakeS3 struct {
	objects map[string]fakeObject
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = fakeObject{
		body:        body,
		contentType: aws.ToString(params.ContentType),
		metadata:    params.Metadata,
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.body)),
		ContentLength: aws.Int64(int64(len(obj.body))),
		ContentType:   aws.String(obj.contentType),
		Metadata:      obj.metadata,
		LastModified:  aws.Time(time.Unix(1700000000, 0)),
	}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.body))),
		ContentType:   aws.String(obj.contentType),
		Metadata:      obj.metadata,
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(params.Key)
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	lastKey      string
	lastTTL      time.Duration
	lastMetadata map[string]string
}

func (p *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	p.lastKey = aws.ToString(params.Key)
	p.lastTTL = opts.Expires
	p.lastMetadata = params.Metadata
	return &v4.PresignedHTTPRequest{
		URL:    "https://" + aws.ToString(params.Bucket) + ".s3.amazonaws.com/" + p.lastKey + "?X-Amz-Signature=sig",
		Method: http.MethodPut,
	}, nil
}

func newS3Store(client *fakeS3, presigner *fakePresigner, maxBytes int64) *S3Store {
	return NewS3WithClient(client, presigner, S3Options{
		Bucket:    "permits",
		Prefix:    "/tenant-a/",
		UploadTTL: 15 * time.Minute,
		MaxBytes:  maxBytes,
	})
}

func TestS3IssueUploadHandlePresignsPrefixedKey(t *testing.T) {
	presigner := &fakePresigner{}
	store := newS3Store(newFakeS3(), presigner, 0)

	handle, err := store.IssueUploadHandle(context.Background(), "user-1")
	require.NoError(t, err)

	name, err := objectName(handle.ObjectPath)
	require.NoError(t, err)
	assert.Equal(t, "tenant-a/uploads/"+name, presigner.lastKey)
	assert.Equal(t, 15*time.Minute, presigner.lastTTL)
	assert.Equal(t, map[string]string{"owner": "user-1"}, presigner.lastMetadata)
	assert.Equal(t, map[string]string{"x-amz-meta-owner": "user-1"}, handle.Headers)

	normalized, err := NormalizePath(handle.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, handle.ObjectPath, normalized)
}

func TestS3PutStatOpenDelete(t *testing.T) {
	client := newFakeS3()
	store := newS3Store(client, &fakePresigner{}, 0)
	ctx := context.Background()

	handle, err := store.IssueUploadHandle(ctx, "user-1")
	require.NoError(t, err)

	_, err = store.Put(ctx, "user-2", handle.ObjectPath, strings.NewReader("floor plan"), "application/pdf")
	assert.True(t, errors.Is(err, ErrUploadNotFound))

	info, err := store.Put(ctx, "user-1", handle.ObjectPath, strings.NewReader("floor plan"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(len("floor plan")), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.Equal(t, "user-1", info.Owner)

	body, opened, err := store.Open(ctx, handle.ObjectPath)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "floor plan", string(data))
	assert.Equal(t, info.Name, opened.Name)

	require.NoError(t, store.Delete(ctx, handle.ObjectPath))
	assert.Len(t, client.deleted, 1)

	_, err = store.Stat(ctx, handle.ObjectPath)
	assert.True(t, errors.Is(err, ErrObjectNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, handle.ObjectPath), ErrObjectNotFound))

	_, _, err = store.Open(ctx, handle.ObjectPath)
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestS3PutRejectsUnissuedAndOversized(t *testing.T) {
	store := newS3Store(newFakeS3(), &fakePresigner{}, 3)
	ctx := context.Background()

	_, err := store.Put(ctx, "user-1", NewObjectPath(), strings.NewReader("x"), "")
	assert.True(t, errors.Is(err, ErrUploadNotFound))

	handle, err := store.IssueUploadHandle(ctx, "user-1")
	require.NoError(t, err)
	_, err = store.Put(ctx, "user-1", handle.ObjectPath, strings.NewReader("four"), "")
	assert.True(t, errors.Is(err, ErrTooLarge))
}
