package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const defaultContentType = "application/octet-stream"

// LocalStore keeps objects as files under a directory. Upload handles point
// back at this server's PUT /objects/uploads/<uuid> route.
type LocalStore struct {
	dir      string
	ttl      time.Duration
	maxBytes int64
	uploads  *pendingUploads
	now      func() time.Time
}

type localMeta struct {
	ContentType string `json:"contentType"`
	Owner       string `json:"owner,omitempty"`
}

func NewLocal(dir string, uploadTTL time.Duration, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, UploadsDir), 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &LocalStore{
		dir:      dir,
		ttl:      uploadTTL,
		maxBytes: maxBytes,
		uploads:  newPendingUploads(uploadTTL),
		now:      time.Now,
	}, nil
}

func (s *LocalStore) IssueUploadHandle(ctx context.Context, ownerID string) (UploadHandle, error) {
	objectPath := NewObjectPath()
	expiresAt := s.now().Add(s.ttl)
	s.uploads.issue(objectPath, ownerID, expiresAt)
	return UploadHandle{
		UploadURL:  objectPath,
		ObjectPath: objectPath,
		ExpiresAt:  expiresAt,
	}, nil
}

// Put streams body to a temp file and renames it into place once it is
// fully written and synced.
func (s *LocalStore) Put(ctx context.Context, ownerID, objectPath string, body io.Reader, contentType string) (Info, error) {
	name, err := objectName(objectPath)
	if err != nil {
		return Info{}, err
	}
	if !s.uploads.pending(objectPath, ownerID) {
		return Info{}, ErrUploadNotFound
	}

	fullPath := s.fullPath(name)
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), name+".*.tmp")
	if err != nil {
		return Info{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	reader := body
	if s.maxBytes > 0 {
		reader = io.LimitReader(body, s.maxBytes+1)
	}
	size, err := io.Copy(tmp, reader)
	if err != nil {
		cleanup()
		return Info{}, fmt.Errorf("write object: %w", err)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		cleanup()
		return Info{}, ErrTooLarge
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return Info{}, fmt.Errorf("sync object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Info{}, fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return Info{}, fmt.Errorf("rename object: %w", err)
	}

	if contentType == "" {
		contentType = defaultContentType
	}
	if err := s.writeMeta(name, localMeta{ContentType: contentType, Owner: ownerID}); err != nil {
		return Info{}, err
	}
	s.uploads.complete(objectPath)

	return s.Stat(ctx, objectPath)
}

func (s *LocalStore) Open(ctx context.Context, objectPath string) (io.ReadCloser, Info, error) {
	info, err := s.Stat(ctx, objectPath)
	if err != nil {
		return nil, Info{}, err
	}
	name, _ := objectName(objectPath)
	f, err := os.Open(s.fullPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Info{}, ErrObjectNotFound
		}
		return nil, Info{}, fmt.Errorf("open object: %w", err)
	}
	return f, info, nil
}

func (s *LocalStore) Stat(ctx context.Context, objectPath string) (Info, error) {
	name, err := objectName(objectPath)
	if err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(s.fullPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Info{}, ErrObjectNotFound
		}
		return Info{}, fmt.Errorf("stat object: %w", err)
	}

	meta := s.readMeta(name)
	return Info{
		Path:        objectPath,
		Name:        name,
		Size:        fi.Size(),
		ContentType: meta.ContentType,
		Owner:       meta.Owner,
		ModTime:     fi.ModTime().UTC(),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, objectPath string) error {
	name, err := objectName(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(s.fullPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete object: %w", err)
	}
	_ = os.Remove(s.metaPath(name))
	return nil
}

func (s *LocalStore) fullPath(name string) string {
	return filepath.Join(s.dir, UploadsDir, name)
}

func (s *LocalStore) metaPath(name string) string {
	return s.fullPath(name) + ".meta.json"
}

func (s *LocalStore) writeMeta(name string, meta localMeta) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.metaPath(name), payload, 0o640); err != nil {
		return fmt.Errorf("write object metadata: %w", err)
	}
	return nil
}

func (s *LocalStore) readMeta(name string) localMeta {
	meta := localMeta{ContentType: defaultContentType}
	payload, err := os.ReadFile(s.metaPath(name))
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(payload, &meta); err != nil || meta.ContentType == "" {
		meta.ContentType = defaultContentType
	}
	return meta
}
