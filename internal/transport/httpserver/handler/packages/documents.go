package packages

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	documentdomain "permit-tracker-go/internal/domain/document"
	"permit-tracker-go/internal/transport/httpserver/handler/common"
)

type recordDocumentRequest struct {
	DocumentURL      string              `json:"documentURL"`
	ObjectPath       string              `json:"objectPath"`
	FileName         string              `json:"fileName"`
	OriginalFileName string              `json:"originalFileName"`
	FileSize         int64               `json:"fileSize"`
	MimeType         string              `json:"mimeType"`
	DocumentType     documentdomain.Type `json:"documentType"`
}

type documentResponse struct {
	ID               string              `json:"id"`
	PackageID        string              `json:"packageId"`
	FileName         string              `json:"fileName"`
	OriginalFileName string              `json:"originalFileName"`
	FileSize         int64               `json:"fileSize"`
	MimeType         string              `json:"mimeType"`
	DocumentType     documentdomain.Type `json:"documentType"`
	ObjectPath       string              `json:"objectPath"`
	UploadedBy       string              `json:"uploadedBy"`
	CreatedAt        time.Time           `json:"createdAt"`
}

type recordDocumentResponse struct {
	Document   documentResponse `json:"document"`
	ObjectPath string           `json:"objectPath"`
}

// RecordDocument attaches a finished upload to the package. The upload
// must already be in the store, so a failed upload never leaves a row.
func (h *Handlers) RecordDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req recordDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	locator := strings.TrimSpace(req.DocumentURL)
	if locator == "" {
		locator = strings.TrimSpace(req.ObjectPath)
	}
	if locator == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "documentURL is required")
		return
	}

	packageID := chi.URLParam(r, "id")
	doc, err := h.Documents.Record(r.Context(), userID, packageID, documentdomain.RecordInput{
		Locator:          locator,
		FileName:         req.FileName,
		OriginalFileName: req.OriginalFileName,
		FileSize:         req.FileSize,
		MimeType:         req.MimeType,
		DocumentType:     req.DocumentType,
	})
	if err != nil {
		common.WriteServiceError(w, h.log, "documents.record", err, "user_id", userID, "package_id", packageID)
		return
	}

	h.log.Info("documents.record: recorded", "user_id", userID, "package_id", packageID,
		"document_id", doc.ID, "object_path", doc.ObjectPath)
	writeJSON(w, http.StatusCreated, recordDocumentResponse{
		Document:   toDocumentResponse(doc),
		ObjectPath: doc.ObjectPath,
	})
}

func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	packageID := chi.URLParam(r, "id")
	docs, err := h.Documents.List(r.Context(), userID, packageID)
	if err != nil {
		common.WriteServiceError(w, h.log, "documents.list", err, "user_id", userID, "package_id", packageID)
		return
	}

	response := make([]documentResponse, 0, len(docs))
	for i := range docs {
		response = append(response, toDocumentResponse(&docs[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	packageID := chi.URLParam(r, "id")
	documentID := chi.URLParam(r, "documentId")
	doc, err := h.Documents.Get(r.Context(), userID, packageID, documentID)
	if err != nil {
		common.WriteServiceError(w, h.log, "documents.get", err,
			"user_id", userID, "package_id", packageID, "document_id", documentID)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	packageID := chi.URLParam(r, "id")
	documentID := chi.URLParam(r, "documentId")
	result, err := h.Documents.Delete(r.Context(), userID, packageID, documentID)
	if err != nil {
		common.WriteServiceError(w, h.log, "documents.delete", err,
			"user_id", userID, "package_id", packageID, "document_id", documentID)
		return
	}
	if result.ObjectErr != nil {
		h.log.InternalError("documents.delete: stored object not removed", result.ObjectErr,
			"document_id", documentID, "object_path", result.ObjectPath)
	}
	if result.ObjectRetained {
		h.log.Info("documents.delete: stored object still referenced",
			"document_id", documentID, "object_path", result.ObjectPath)
	}
	w.WriteHeader(http.StatusNoContent)
}

func toDocumentResponse(doc *documentdomain.Document) documentResponse {
	return documentResponse{
		ID:               doc.ID,
		PackageID:        doc.PackageID,
		FileName:         doc.FileName,
		OriginalFileName: doc.OriginalFileName,
		FileSize:         doc.FileSize,
		MimeType:         doc.MimeType,
		DocumentType:     doc.DocumentType,
		ObjectPath:       doc.ObjectPath,
		UploadedBy:       doc.UploadedBy,
		CreatedAt:        doc.CreatedAt,
	}
}
