package document

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"permit-tracker-go/internal/domain"
	"permit-tracker-go/internal/domain/permit"
	"permit-tracker-go/internal/objectstore"
)

type fakeDocumentRepo struct {
	docs map[string]*Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*Document)}
}

func (r *fakeDocumentRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	snapshot := make(map[string]*Document, len(r.docs))
	for id, doc := range r.docs {
		snapshot[id] = doc
	}
	if err := fn(r); err != nil {
		r.docs = snapshot
		return err
	}
	return nil
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *Document) error {
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepo) ListByPackage(ctx context.Context, packageID string) ([]Document, error) {
	var result []Document
	for _, doc := range r.docs {
		if doc.PackageID == packageID {
			result = append(result, *doc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeDocumentRepo) FindByObjectPath(ctx context.Context, objectPath string) (*Document, error) {
	for _, doc := range r.docs {
		if doc.ObjectPath == objectPath {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, ErrDocumentNotFound
}

func (r *fakeDocumentRepo) CountByObjectPath(ctx context.Context, objectPath string) (int64, error) {
	var count int64
	for _, doc := range r.docs {
		if doc.ObjectPath == objectPath {
			count++
		}
	}
	return count, nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := r.docs[id]; !ok {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

type fakePackages map[string]*permit.Package

func (f fakePackages) Authorize(ctx context.Context, userID, packageID string, action permit.Action) (*permit.Package, error) {
	pkg, ok := f[packageID]
	if !ok {
		return nil, permit.ErrPackageNotFound
	}
	if err := permit.Authorize(userID, pkg, action); err != nil {
		return nil, err
	}
	return pkg, nil
}

type fakeObjects struct {
	stored    map[string]objectstore.Info
	deleteErr error
	deleted   []string
}

func (f *fakeObjects) Stat(ctx context.Context, objectPath string) (objectstore.Info, error) {
	info, ok := f.stored[objectPath]
	if !ok {
		return objectstore.Info{}, objectstore.ErrObjectNotFound
	}
	return info, nil
}

func (f *fakeObjects) Delete(ctx context.Context, objectPath string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.stored[objectPath]; !ok {
		return objectstore.ErrObjectNotFound
	}
	delete(f.stored, objectPath)
	f.deleted = append(f.deleted, objectPath)
	return nil
}

const (
	uploadID   = "0b8f6a52-9a8e-4c36-8f0e-1f1d7e1b2c3d"
	objectPath = "/objects/uploads/" + uploadID
)

type fixture struct {
	repo    *fakeDocumentRepo
	objects *fakeObjects
	svc     *Service
}

func newFixture() *fixture {
	repo := newFakeDocumentRepo()
	objects := &fakeObjects{stored: map[string]objectstore.Info{
		objectPath: {Path: objectPath, Name: uploadID, Size: 2048, ContentType: "application/pdf", Owner: "owner"},
	}}
	packages := fakePackages{
		"pkg-1": {ID: "pkg-1", OwnerID: "owner"},
		"pkg-2": {ID: "pkg-2", OwnerID: "owner"},
		"pkg-3": {ID: "pkg-3", OwnerID: "other"},
	}
	svc := NewService(repo, packages, objects)
	clock := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &fixture{repo: repo, objects: objects, svc: svc}
}

func validRecord() RecordInput {
	return RecordInput{
		Locator:          "http://localhost:8080" + objectPath,
		OriginalFileName: "site-plan.pdf",
		FileSize:         1234,
		MimeType:         "application/pdf",
		DocumentType:     TypeSitePlan,
	}
}

func TestRecordStoresUploadAsReported(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if doc.ObjectPath != objectPath {
		t.Fatalf("expected normalized object path, got %q", doc.ObjectPath)
	}
	if doc.FileSize != 1234 || doc.MimeType != "application/pdf" {
		t.Fatalf("expected reported size and type kept, got %d %q", doc.FileSize, doc.MimeType)
	}
	if doc.FileName != uploadID {
		t.Fatalf("expected file name to default to the object name, got %q", doc.FileName)
	}
	if doc.UploadedBy != "owner" {
		t.Fatalf("expected uploader recorded, got %q", doc.UploadedBy)
	}

	docs, err := f.svc.List(ctx, "owner", "pkg-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0] != *doc {
		t.Fatalf("expected the recorded row back unchanged, got %+v", docs)
	}
}

func TestRecordRequiresStoredObject(t *testing.T) {
	f := newFixture()
	input := validRecord()
	input.Locator = "/objects/uploads/5a1c3f3e-4f4b-4a53-9a0a-6b2d1c0e9f88"

	if _, err := f.svc.Record(context.Background(), "owner", "pkg-1", input); !errors.Is(err, objectstore.ErrObjectNotFound) {
		t.Fatalf("expected object not found, got %v", err)
	}
	if len(f.repo.docs) != 0 {
		t.Fatalf("expected no orphan row")
	}
}

func TestRecordValidation(t *testing.T) {
	f := newFixture()
	cases := map[string]func(*RecordInput){
		"locator":      func(in *RecordInput) { in.Locator = "not-a-path" },
		"original":     func(in *RecordInput) { in.OriginalFileName = " " },
		"size":         func(in *RecordInput) { in.FileSize = -1 },
		"mime":         func(in *RecordInput) { in.MimeType = "" },
		"documentType": func(in *RecordInput) { in.DocumentType = "selfie" },
	}
	for name, mutate := range cases {
		input := validRecord()
		mutate(&input)
		if _, err := f.svc.Record(context.Background(), "owner", "pkg-1", input); !domain.IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestRecordChecksOwnership(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Record(context.Background(), "intruder", "pkg-1", validRecord()); !errors.Is(err, permit.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.List(context.Background(), "owner", "missing"); !errors.Is(err, permit.ErrPackageNotFound) {
		t.Fatalf("expected package not found, got %v", err)
	}
}

func TestRecordRejectsAnotherUsersUpload(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Record(ctx, "other", "pkg-3", validRecord()); !errors.Is(err, ErrObjectNotOwned) {
		t.Fatalf("expected object not owned, got %v", err)
	}

	f.objects.stored[objectPath] = objectstore.Info{Path: objectPath, Name: uploadID}
	if _, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord()); !errors.Is(err, ErrObjectNotOwned) {
		t.Fatalf("expected object without an owner rejected, got %v", err)
	}
	if len(f.repo.docs) != 0 {
		t.Fatalf("expected no rows recorded")
	}
}

func TestRecordRejectsObjectInUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := f.svc.Record(ctx, "owner", "pkg-2", validRecord()); !errors.Is(err, ErrObjectInUse) {
		t.Fatalf("expected object in use for a second package, got %v", err)
	}
	if _, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord()); !errors.Is(err, ErrObjectInUse) {
		t.Fatalf("expected object in use for the same package, got %v", err)
	}
	if len(f.repo.docs) != 1 {
		t.Fatalf("expected a single row, got %d", len(f.repo.docs))
	}
}

func TestDeleteKeepsObjectStillReferenced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doc, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	shared := *doc
	shared.ID = "shared"
	shared.PackageID = "pkg-2"
	f.repo.docs[shared.ID] = &shared

	result, err := f.svc.Delete(ctx, "owner", "pkg-1", doc.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !result.ObjectRetained || result.ObjectErr != nil {
		t.Fatalf("expected object retained, got %+v", result)
	}
	if len(f.objects.deleted) != 0 {
		t.Fatalf("expected object kept, deleted %v", f.objects.deleted)
	}

	result, err = f.svc.Delete(ctx, "owner", "pkg-2", shared.ID)
	if err != nil {
		t.Fatalf("delete last reference: %v", err)
	}
	if result.ObjectRetained || len(f.objects.deleted) != 1 {
		t.Fatalf("expected object removed with its last reference, got %+v", result)
	}
}

func TestDeleteRemovesRowThenObject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doc, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := f.svc.Delete(ctx, "owner", "pkg-2", doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected not found through another package, got %v", err)
	}

	result, err := f.svc.Delete(ctx, "owner", "pkg-1", doc.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.ObjectErr != nil || result.ObjectPath != objectPath {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(f.objects.deleted) != 1 {
		t.Fatalf("expected object removed")
	}
	if _, err := f.svc.Delete(ctx, "owner", "pkg-1", doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteReportsObjectFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doc, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	f.objects.deleteErr = errors.New("bucket unavailable")

	result, err := f.svc.Delete(ctx, "owner", "pkg-1", doc.ID)
	if err != nil {
		t.Fatalf("expected row deletion to succeed, got %v", err)
	}
	if result.ObjectErr == nil {
		t.Fatalf("expected object error reported")
	}
	if len(f.repo.docs) != 0 {
		t.Fatalf("expected row removed")
	}
}

func TestAuthorizeObject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.AuthorizeObject(ctx, "owner", objectPath); !errors.Is(err, objectstore.ErrObjectNotFound) {
		t.Fatalf("expected unreferenced object to be not found, got %v", err)
	}

	if _, err := f.svc.Record(ctx, "owner", "pkg-1", validRecord()); err != nil {
		t.Fatalf("record: %v", err)
	}
	doc, err := f.svc.AuthorizeObject(ctx, "owner", objectPath)
	if err != nil || doc.PackageID != "pkg-1" {
		t.Fatalf("expected owner access, got %v %v", doc, err)
	}
	if _, err := f.svc.AuthorizeObject(ctx, "intruder", objectPath); !errors.Is(err, permit.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.AuthorizeObject(ctx, "owner", "/objects/../etc/passwd"); !errors.Is(err, objectstore.ErrObjectNotFound) {
		t.Fatalf("expected invalid path to be not found, got %v", err)
	}
}

func TestTypesCount(t *testing.T) {
	if len(Types) != 17 {
		t.Fatalf("expected 17 document types, got %d", len(Types))
	}
	if !TypeOther.Valid() || Type("x").Valid() {
		t.Fatalf("unexpected Valid results")
	}
}
