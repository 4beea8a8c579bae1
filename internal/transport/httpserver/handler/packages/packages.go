package packages

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	permitdomain "permit-tracker-go/internal/domain/permit"
	"permit-tracker-go/internal/transport/httpserver/handler/common"
)

type createPackageRequest struct {
	Name              string                   `json:"name"`
	Description       *string                  `json:"description"`
	ProjectAddress    string                   `json:"projectAddress"`
	ProjectType       permitdomain.ProjectType `json:"projectType"`
	ConstructionValue *int64                   `json:"constructionValue"`
	Status            *permitdomain.Status     `json:"status"`
	CountyID          string                   `json:"countyId"`
	PermitNumber      *string                  `json:"permitNumber"`
	ExpiresAt         *time.Time               `json:"expiresAt"`
}

type updatePackageRequest struct {
	Name              *string                   `json:"name"`
	Description       *string                   `json:"description"`
	ProjectAddress    *string                   `json:"projectAddress"`
	ProjectType       *permitdomain.ProjectType `json:"projectType"`
	ConstructionValue *int64                    `json:"constructionValue"`
	Status            *permitdomain.Status      `json:"status"`
	CountyID          *string                   `json:"countyId"`
	PermitNumber      *string                   `json:"permitNumber"`
	ExpiresAt         *time.Time                `json:"expiresAt"`
}

type packageResponse struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Description       *string                  `json:"description"`
	ProjectAddress    string                   `json:"projectAddress"`
	ProjectType       permitdomain.ProjectType `json:"projectType"`
	ConstructionValue *int64                   `json:"constructionValue"`
	Status            permitdomain.Status      `json:"status"`
	NextStatuses      []permitdomain.Status    `json:"nextStatuses"`
	CountyID          string                   `json:"countyId"`
	OwnerID           string                   `json:"ownerId"`
	PermitNumber      *string                  `json:"permitNumber"`
	SubmittedAt       *time.Time               `json:"submittedAt"`
	ApprovedAt        *time.Time               `json:"approvedAt"`
	IssuedAt          *time.Time               `json:"issuedAt"`
	ExpiresAt         *time.Time               `json:"expiresAt"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

type statsResponse struct {
	ActivePackages      int64 `json:"activePackages"`
	ApprovedPackages    int64 `json:"approvedPackages"`
	UnderReviewPackages int64 `json:"underReviewPackages"`
	IssuePackages       int64 `json:"issuePackages"`
}

func (h *Handlers) ListPackages(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := permitdomain.ListFilter{
		CountyID: common.FilterParam(query.Get("county")),
		Status:   permitdomain.Status(common.FilterParam(query.Get("status"))),
		Search:   query.Get("search"),
	}

	packages, err := h.Packages.List(r.Context(), userID, filter)
	if err != nil {
		common.WriteServiceError(w, h.log, "packages.list", err, "user_id", userID)
		return
	}

	response := make([]packageResponse, 0, len(packages))
	for i := range packages {
		response = append(response, toPackageResponse(&packages[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreatePackage(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createPackageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	created, err := h.Packages.Create(r.Context(), userID, permitdomain.CreatePackageInput{
		Name:              req.Name,
		Description:       deref(req.Description),
		ProjectAddress:    req.ProjectAddress,
		ProjectType:       req.ProjectType,
		ConstructionValue: req.ConstructionValue,
		Status:            req.Status,
		CountyID:          req.CountyID,
		PermitNumber:      deref(req.PermitNumber),
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		common.WriteServiceError(w, h.log, "packages.create", err, "user_id", userID)
		return
	}

	h.log.Info("packages.create: created", "user_id", userID, "package_id", created.ID)
	writeJSON(w, http.StatusCreated, toPackageResponse(created))
}

func (h *Handlers) GetPackage(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	packageID := chi.URLParam(r, "id")
	pkg, err := h.Packages.Authorize(r.Context(), userID, packageID, permitdomain.ActionRead)
	if err != nil {
		common.WriteServiceError(w, h.log, "packages.get", err, "user_id", userID, "package_id", packageID)
		return
	}
	writeJSON(w, http.StatusOK, toPackageResponse(pkg))
}

func (h *Handlers) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req updatePackageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	packageID := chi.URLParam(r, "id")
	updated, err := h.Packages.Update(r.Context(), userID, packageID, permitdomain.UpdatePackageInput{
		Name:              req.Name,
		Description:       req.Description,
		ProjectAddress:    req.ProjectAddress,
		ProjectType:       req.ProjectType,
		ConstructionValue: req.ConstructionValue,
		Status:            req.Status,
		CountyID:          req.CountyID,
		PermitNumber:      req.PermitNumber,
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		common.WriteServiceError(w, h.log, "packages.update", err, "user_id", userID, "package_id", packageID)
		return
	}
	writeJSON(w, http.StatusOK, toPackageResponse(updated))
}

// DeletePackage removes the package with its checklist progress and
// documents. Stored files that could not be removed are logged only.
func (h *Handlers) DeletePackage(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	packageID := chi.URLParam(r, "id")
	result, err := h.Packages.Delete(r.Context(), userID, packageID)
	if err != nil {
		common.WriteServiceError(w, h.log, "packages.delete", err, "user_id", userID, "package_id", packageID)
		return
	}

	for _, path := range result.FailedObjects {
		h.log.Warn("packages.delete: stored object not removed", "package_id", packageID, "object_path", path)
	}
	h.log.Info("packages.delete: deleted", "user_id", userID, "package_id", packageID,
		"objects_removed", len(result.RemovedObjects), "objects_failed", len(result.FailedObjects))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	stats, err := h.Packages.Stats(r.Context(), userID)
	if err != nil {
		common.WriteServiceError(w, h.log, "stats.get", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		ActivePackages:      stats.Active,
		ApprovedPackages:    stats.Approved,
		UnderReviewPackages: stats.UnderReview,
		IssuePackages:       stats.Issues,
	})
}

func toPackageResponse(pkg *permitdomain.Package) packageResponse {
	return packageResponse{
		ID:                pkg.ID,
		Name:              pkg.Name,
		Description:       pkg.Description,
		ProjectAddress:    pkg.ProjectAddress,
		ProjectType:       pkg.ProjectType,
		ConstructionValue: pkg.ConstructionValue,
		Status:            pkg.Status,
		NextStatuses:      permitdomain.NextStatuses(pkg.Status),
		CountyID:          pkg.CountyID,
		OwnerID:           pkg.OwnerID,
		PermitNumber:      pkg.PermitNumber,
		SubmittedAt:       pkg.SubmittedAt,
		ApprovedAt:        pkg.ApprovedAt,
		IssuedAt:          pkg.IssuedAt,
		ExpiresAt:         pkg.ExpiresAt,
		CreatedAt:         pkg.CreatedAt,
		UpdatedAt:         pkg.UpdatedAt,
	}
}
