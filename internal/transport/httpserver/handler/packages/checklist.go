package packages

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	checklistdomain "permit-tracker-go/internal/domain/checklist"
	"permit-tracker-go/internal/transport/httpserver/handler/common"
)

type updateProgressRequest struct {
	IsCompleted     *bool   `json:"isCompleted"`
	Notes           *string `json:"notes"`
	ExpectedVersion *int    `json:"expectedVersion"`
}

type progressResponse struct {
	ID              string     `json:"id"`
	PackageID       string     `json:"packageId"`
	ChecklistItemID string     `json:"checklistItemId"`
	IsCompleted     bool       `json:"isCompleted"`
	CompletedAt     *time.Time `json:"completedAt"`
	Notes           string     `json:"notes"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type summaryResponse struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	RequiredTotal     int `json:"requiredTotal"`
	RequiredCompleted int `json:"requiredCompleted"`
	Percent           int `json:"percent"`
}

// ListProgress returns the stored progress rows only. Items without a row
// are not completed and have no notes.
func (h *Handlers) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	packageID := chi.URLParam(r, "id")
	progress, err := h.Checklists.ListProgress(r.Context(), userID, packageID)
	if err != nil {
		common.WriteServiceError(w, h.log, "checklist.list", err, "user_id", userID, "package_id", packageID)
		return
	}

	response := make([]progressResponse, 0, len(progress))
	for i := range progress {
		response = append(response, toProgressResponse(&progress[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ChecklistSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	packageID := chi.URLParam(r, "id")
	summary, err := h.Checklists.Summary(r.Context(), userID, packageID)
	if err != nil {
		common.WriteServiceError(w, h.log, "checklist.summary", err, "user_id", userID, "package_id", packageID)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Total:             summary.Total,
		Completed:         summary.Completed,
		RequiredTotal:     summary.RequiredTotal,
		RequiredCompleted: summary.RequiredCompleted,
		Percent:           summary.Percent,
	})
}

// UpdateProgress upserts one item's progress. Notes are replaced on every
// write; leaving them out clears them.
func (h *Handlers) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req updateProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.IsCompleted == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "isCompleted is required")
		return
	}

	packageID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	progress, err := h.Checklists.UpdateProgress(r.Context(), userID, packageID, itemID, checklistdomain.UpdateProgressInput{
		IsCompleted:     *req.IsCompleted,
		Notes:           deref(req.Notes),
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		common.WriteServiceError(w, h.log, "checklist.update", err,
			"user_id", userID, "package_id", packageID, "item_id", itemID)
		return
	}
	writeJSON(w, http.StatusOK, toProgressResponse(progress))
}

func toProgressResponse(progress *checklistdomain.Progress) progressResponse {
	return progressResponse{
		ID:              progress.ID,
		PackageID:       progress.PackageID,
		ChecklistItemID: progress.ChecklistItemID,
		IsCompleted:     progress.IsCompleted,
		CompletedAt:     progress.CompletedAt,
		Notes:           progress.Notes,
		Version:         progress.Version,
		CreatedAt:       progress.CreatedAt,
		UpdatedAt:       progress.UpdatedAt,
	}
}
