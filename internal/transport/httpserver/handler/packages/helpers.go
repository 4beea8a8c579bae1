package packages

import (
	"net/http"

	"permit-tracker-go/internal/transport/httpserver/handler/common"
	"permit-tracker-go/internal/transport/httpserver/middleware"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	common.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	common.WriteJSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return common.DecodeJSON(r, dst)
}

// callerID writes 401 and returns false when the request carries no user.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return "", false
	}
	return userID, true
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
