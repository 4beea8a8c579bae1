package document

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"permit-tracker-go/internal/domain"
	"permit-tracker-go/internal/domain/permit"
	"permit-tracker-go/internal/objectstore"
)

type PackageAuthorizer interface {
	Authorize(ctx context.Context, userID, packageID string, action permit.Action) (*permit.Package, error)
}

// Objects is the part of the object store documents need: checking that an
// upload landed and removing it again.
type Objects interface {
	Stat(ctx context.Context, objectPath string) (objectstore.Info, error)
	Delete(ctx context.Context, objectPath string) error
}

type Service struct {
	repo     Repository
	packages PackageAuthorizer
	objects  Objects
	now      func() time.Time
}

func NewService(repo Repository, packages PackageAuthorizer, objects Objects) *Service {
	return &Service{
		repo:     repo,
		packages: packages,
		objects:  objects,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Record attaches a completed upload to a package. The object must exist in
// the store, have been uploaded by userID and not be attached to any other
// document; size and MIME type are stored exactly as the client reports them.
func (s *Service) Record(ctx context.Context, userID, packageID string, input RecordInput) (*Document, error) {
	pkg, err := s.packages.Authorize(ctx, userID, packageID, permit.ActionWrite)
	if err != nil {
		return nil, err
	}

	objectPath, err := objectstore.NormalizePath(input.Locator)
	if err != nil {
		return nil, domain.NewValidationError("objectPath", "is not a valid upload locator")
	}
	original := strings.TrimSpace(input.OriginalFileName)
	if original == "" {
		return nil, domain.NewValidationError("originalFileName", "is required")
	}
	if input.FileSize < 0 {
		return nil, domain.NewValidationError("fileSize", "must be non-negative")
	}
	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		return nil, domain.NewValidationError("mimeType", "is required")
	}
	if !input.DocumentType.Valid() {
		return nil, domain.NewValidationError("documentType", "is not a known document type")
	}

	info, err := s.objects.Stat(ctx, objectPath)
	if err != nil {
		return nil, err
	}
	if info.Owner != userID {
		return nil, ErrObjectNotOwned
	}
	if _, err := s.repo.FindByObjectPath(ctx, objectPath); err == nil {
		return nil, ErrObjectInUse
	} else if !errors.Is(err, ErrDocumentNotFound) {
		return nil, err
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		fileName = info.Name
	}

	doc := Document{
		ID:               uuid.NewString(),
		PackageID:        pkg.ID,
		FileName:         fileName,
		OriginalFileName: original,
		FileSize:         input.FileSize,
		MimeType:         mimeType,
		DocumentType:     input.DocumentType,
		ObjectPath:       objectPath,
		UploadedBy:       userID,
		CreatedAt:        s.now(),
	}
	if err := s.repo.Create(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) List(ctx context.Context, userID, packageID string) ([]Document, error) {
	pkg, err := s.packages.Authorize(ctx, userID, packageID, permit.ActionRead)
	if err != nil {
		return nil, err
	}

	docs, err := s.repo.ListByPackage(ctx, pkg.ID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

func (s *Service) Get(ctx context.Context, userID, packageID, documentID string) (*Document, error) {
	pkg, err := s.packages.Authorize(ctx, userID, packageID, permit.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.getInPackage(ctx, pkg.ID, documentID)
}

// Delete removes the document row and then its stored object, unless another
// document still references the object. A failure to remove the object is
// reported in the result; the row stays deleted.
func (s *Service) Delete(ctx context.Context, userID, packageID, documentID string) (DeleteResult, error) {
	pkg, err := s.packages.Authorize(ctx, userID, packageID, permit.ActionDelete)
	if err != nil {
		return DeleteResult{}, err
	}
	doc, err := s.getInPackage(ctx, pkg.ID, documentID)
	if err != nil {
		return DeleteResult{}, err
	}

	var references int64
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		deleted, err := tx.Delete(ctx, doc.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrDocumentNotFound
		}
		references, err = tx.CountByObjectPath(ctx, doc.ObjectPath)
		return err
	})
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{ObjectPath: doc.ObjectPath}
	if references > 0 {
		result.ObjectRetained = true
		return result, nil
	}
	if err := s.objects.Delete(ctx, doc.ObjectPath); err != nil && !errors.Is(err, objectstore.ErrObjectNotFound) {
		result.ObjectErr = err
	}
	return result, nil
}

// AuthorizeObject decides whether userID may download the object at
// locator: a document must reference it, and the caller must own that
// document's package.
func (s *Service) AuthorizeObject(ctx context.Context, userID, locator string) (*Document, error) {
	objectPath, err := objectstore.NormalizePath(locator)
	if err != nil {
		return nil, objectstore.ErrObjectNotFound
	}

	doc, err := s.repo.FindByObjectPath(ctx, objectPath)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}

	if _, err := s.packages.Authorize(ctx, userID, doc.PackageID, permit.ActionRead); err != nil {
		if errors.Is(err, permit.ErrPackageNotFound) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *Service) getInPackage(ctx context.Context, packageID, documentID string) (*Document, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, ErrDocumentNotFound
	}
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.PackageID != packageID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}
