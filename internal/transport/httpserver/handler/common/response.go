package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"permit-tracker-go/internal/domain"
	checklistdomain "permit-tracker-go/internal/domain/checklist"
	countydomain "permit-tracker-go/internal/domain/county"
	documentdomain "permit-tracker-go/internal/domain/document"
	permitdomain "permit-tracker-go/internal/domain/permit"
	userdomain "permit-tracker-go/internal/domain/user"
	"permit-tracker-go/internal/objectstore"
	"permit-tracker-go/pkg/logger"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ErrorStatus maps an expected service error onto its HTTP status and
// error code. ok is false for anything that is not a business outcome.
func ErrorStatus(err error) (status int, code string, ok bool) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "invalid_request", true
	case errors.Is(err, permitdomain.ErrInvalidTransition):
		return http.StatusBadRequest, "invalid_transition", true
	case errors.Is(err, objectstore.ErrInvalidPath):
		return http.StatusBadRequest, "invalid_object_path", true
	case errors.Is(err, permitdomain.ErrForbidden):
		return http.StatusForbidden, "forbidden", true
	case errors.Is(err, documentdomain.ErrObjectNotOwned):
		return http.StatusForbidden, "object_not_owned", true
	case errors.Is(err, permitdomain.ErrPackageNotFound):
		return http.StatusNotFound, "package_not_found", true
	case errors.Is(err, countydomain.ErrCountyNotFound):
		return http.StatusNotFound, "county_not_found", true
	case errors.Is(err, checklistdomain.ErrItemNotFound):
		return http.StatusNotFound, "checklist_item_not_found", true
	case errors.Is(err, documentdomain.ErrDocumentNotFound):
		return http.StatusNotFound, "document_not_found", true
	case errors.Is(err, userdomain.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", true
	case errors.Is(err, objectstore.ErrObjectNotFound):
		return http.StatusNotFound, "object_not_found", true
	case errors.Is(err, objectstore.ErrUploadNotFound):
		return http.StatusNotFound, "upload_not_found", true
	case errors.Is(err, checklistdomain.ErrProgressConflict):
		return http.StatusConflict, "version_conflict", true
	case errors.Is(err, documentdomain.ErrObjectInUse):
		return http.StatusConflict, "object_in_use", true
	case errors.Is(err, objectstore.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", true
	}
	return http.StatusInternalServerError, "internal_error", false
}

// WriteServiceError answers with the status ErrorStatus picks. Business
// errors are logged at warn level with their message sent to the client;
// anything else is logged as internal and hidden behind a generic message.
func WriteServiceError(w http.ResponseWriter, log logger.Logger, op string, err error, args ...any) {
	status, code, ok := ErrorStatus(err)
	if ok {
		log.BusinessError(op+": "+code, err, args...)
		WriteError(w, status, code, err.Error())
		return
	}
	log.InternalError(op+": failed", err, args...)
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
