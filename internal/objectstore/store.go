// Package objectstore keeps uploaded document bytes out of the database.
// Documents reference stored objects by path, e.g. /objects/uploads/<uuid>;
// backends map that path onto a directory or a bucket key.
package objectstore

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PathPrefix   = "/objects/"
	UploadsDir   = "uploads"
	uploadPrefix = PathPrefix + UploadsDir + "/"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid object path")
	ErrUploadNotFound = errors.New("upload handle not issued or expired")
	ErrTooLarge       = errors.New("object exceeds the upload limit")
)

// ownerMetadataKey names the stored metadata entry holding the ID of the
// user an object was uploaded by.
const ownerMetadataKey = "owner"

type Info struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
	// Owner is the user the upload handle was issued to. Empty for objects
	// stored without one.
	Owner   string
	ModTime time.Time
}

type UploadHandle struct {
	UploadURL  string
	ObjectPath string
	ExpiresAt  time.Time
	// Headers must accompany the PUT to UploadURL.
	Headers map[string]string
}

type Store interface {
	// IssueUploadHandle reserves a fresh object path for ownerID. Only that
	// user can Put to it, and the stored object remembers them as its owner.
	IssueUploadHandle(ctx context.Context, ownerID string) (UploadHandle, error)
	Put(ctx context.Context, ownerID, objectPath string, body io.Reader, contentType string) (Info, error)
	Open(ctx context.Context, objectPath string) (io.ReadCloser, Info, error)
	Stat(ctx context.Context, objectPath string) (Info, error)
	Delete(ctx context.Context, objectPath string) error
}

// NewObjectPath returns the path for a fresh upload.
func NewObjectPath() string {
	return uploadPrefix + uuid.NewString()
}

// NormalizePath turns whatever locator a client reports back after an
// upload (the object path itself, an upload URL on this server, or a
// presigned bucket URL) into the canonical /objects/uploads/<uuid> form.
func NormalizePath(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", ErrInvalidPath
	}

	path := locator
	if strings.Contains(locator, "://") {
		parsed, err := url.Parse(locator)
		if err != nil {
			return "", ErrInvalidPath
		}
		path = parsed.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] != UploadsDir {
		return "", ErrInvalidPath
	}
	id, err := uuid.Parse(segments[len(segments)-1])
	if err != nil {
		return "", ErrInvalidPath
	}
	return uploadPrefix + id.String(), nil
}

// objectName returns the uuid part of a canonical object path.
func objectName(objectPath string) (string, error) {
	if !strings.HasPrefix(objectPath, uploadPrefix) {
		return "", ErrInvalidPath
	}
	name := strings.TrimPrefix(objectPath, uploadPrefix)
	if _, err := uuid.Parse(name); err != nil {
		return "", ErrInvalidPath
	}
	return name, nil
}
