package objects

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"permit-tracker-go/internal/objectstore"
	"permit-tracker-go/internal/transport/httpserver/handler/common"
	"permit-tracker-go/internal/transport/httpserver/middleware"
)

type uploadHandleResponse struct {
	UploadURL     string            `json:"uploadURL"`
	ObjectPath    string            `json:"objectPath"`
	ExpiresAt     time.Time         `json:"expiresAt"`
	UploadHeaders map[string]string `json:"uploadHeaders,omitempty"`
}

type uploadResponse struct {
	ObjectPath  string `json:"objectPath"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// IssueUpload hands out a single-use location for the client to PUT a
// file to before recording it against a package.
func (h *Handlers) IssueUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	handle, err := h.Store.IssueUploadHandle(r.Context(), userID)
	if err != nil {
		middleware.ObjectOperationsTotal.WithLabelValues("issue", "error").Inc()
		common.WriteServiceError(w, h.log, "objects.issue", err, "user_id", userID)
		return
	}
	middleware.ObjectOperationsTotal.WithLabelValues("issue", "ok").Inc()

	common.WriteJSON(w, http.StatusOK, uploadHandleResponse{
		UploadURL:     handle.UploadURL,
		ObjectPath:    handle.ObjectPath,
		ExpiresAt:     handle.ExpiresAt,
		UploadHeaders: handle.Headers,
	})
}

// Upload stores the request body under a handle issued to the caller.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	objectPath := path.Join(objectstore.PathPrefix, objectstore.UploadsDir, chi.URLParam(r, "handle"))
	info, err := h.Store.Put(r.Context(), userID, objectPath, r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		middleware.ObjectOperationsTotal.WithLabelValues("upload", "error").Inc()
		common.WriteServiceError(w, h.log, "objects.upload", err, "user_id", userID, "object_path", objectPath)
		return
	}
	middleware.ObjectOperationsTotal.WithLabelValues("upload", "ok").Inc()
	middleware.UploadedBytesTotal.Add(float64(info.Size))

	h.log.Info("objects.upload: stored", "user_id", userID, "object_path", info.Path, "size", info.Size)
	common.WriteJSON(w, http.StatusOK, uploadResponse{
		ObjectPath:  info.Path,
		Size:        info.Size,
		ContentType: info.ContentType,
	})
}

// Download streams a stored file to the owner of the package whose document
// references it.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	doc, err := h.Documents.AuthorizeObject(r.Context(), userID, r.URL.Path)
	if err != nil {
		common.WriteServiceError(w, h.log, "objects.download", err, "user_id", userID, "path", r.URL.Path)
		return
	}

	body, info, err := h.Store.Open(r.Context(), doc.ObjectPath)
	if err != nil {
		middleware.ObjectOperationsTotal.WithLabelValues("download", "error").Inc()
		common.WriteServiceError(w, h.log, "objects.download", err, "user_id", userID, "object_path", doc.ObjectPath)
		return
	}
	defer body.Close()
	middleware.ObjectOperationsTotal.WithLabelValues("download", "ok").Inc()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.OriginalFileName}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.log.Warn("objects.download: stream interrupted", "object_path", doc.ObjectPath, "err", err)
	}
}
