package common

import (
	"net/http"
	"time"

	"permit-tracker-go/internal/transport/httpserver/middleware"
)

type authUserResponse struct {
	ID              string    `json:"id"`
	Email           *string   `json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (h *Handlers) AuthUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	user, err := h.Users.GetByID(r.Context(), caller.ID)
	if err != nil {
		WriteServiceError(w, h.log, "auth.user", err, "user_id", caller.ID)
		return
	}

	WriteJSON(w, http.StatusOK, authUserResponse{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfileImageURL: user.ProfileImageURL,
		Role:            user.Role,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	})
}
