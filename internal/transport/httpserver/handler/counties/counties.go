package counties

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	checklistdomain "permit-tracker-go/internal/domain/checklist"
	countydomain "permit-tracker-go/internal/domain/county"
	permitdomain "permit-tracker-go/internal/domain/permit"
	"permit-tracker-go/internal/transport/httpserver/handler/common"
)

type countyResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Slug                string    `json:"slug"`
	State               string    `json:"state"`
	BuildingDeptPhone   *string   `json:"buildingDeptPhone"`
	BuildingDeptEmail   *string   `json:"buildingDeptEmail"`
	BuildingDeptWebsite *string   `json:"buildingDeptWebsite"`
	CreatedAt           time.Time `json:"createdAt"`
}

type checklistItemResponse struct {
	ID           string                   `json:"id"`
	CountyID     string                   `json:"countyId"`
	ProjectType  permitdomain.ProjectType `json:"projectType"`
	Title        string                   `json:"title"`
	Description  *string                  `json:"description"`
	IsRequired   bool                     `json:"isRequired"`
	DocumentType *string                  `json:"documentType"`
	Category     string                   `json:"category"`
	Order        int                      `json:"order"`
	CreatedAt    time.Time                `json:"createdAt"`
}

func (h *Handlers) ListCounties(w http.ResponseWriter, r *http.Request) {
	counties, err := h.Counties.List(r.Context())
	if err != nil {
		common.WriteServiceError(w, h.log, "counties.list", err)
		return
	}

	response := make([]countyResponse, 0, len(counties))
	for _, county := range counties {
		response = append(response, toCountyResponse(county))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetCounty(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	county, err := h.Counties.Resolve(r.Context(), idOrSlug)
	if err != nil {
		common.WriteServiceError(w, h.log, "counties.get", err, "county", idOrSlug)
		return
	}
	common.WriteJSON(w, http.StatusOK, toCountyResponse(*county))
}

// ListChecklistItems returns the checklist definition for a county and a
// project type, ordered for display.
func (h *Handlers) ListChecklistItems(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	projectType := permitdomain.ProjectType(chi.URLParam(r, "projectType"))
	if !projectType.Valid() {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "projectType is not a known project type")
		return
	}

	county, err := h.Counties.Resolve(r.Context(), idOrSlug)
	if err != nil {
		common.WriteServiceError(w, h.log, "counties.checklist", err, "county", idOrSlug)
		return
	}

	items, err := h.Checklists.ListItems(r.Context(), county.ID, projectType)
	if err != nil {
		common.WriteServiceError(w, h.log, "counties.checklist", err, "county_id", county.ID, "project_type", projectType)
		return
	}

	common.WriteJSON(w, http.StatusOK, checklistItemsResponse(items))
}

func checklistItemsResponse(items []checklistdomain.Item) []checklistItemResponse {
	response := make([]checklistItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, checklistItemResponse{
			ID:           item.ID,
			CountyID:     item.CountyID,
			ProjectType:  item.ProjectType,
			Title:        item.Title,
			Description:  item.Description,
			IsRequired:   item.IsRequired,
			DocumentType: item.DocumentType,
			Category:     item.Category,
			Order:        item.Order,
			CreatedAt:    item.CreatedAt,
		})
	}
	return response
}

func toCountyResponse(county countydomain.County) countyResponse {
	return countyResponse{
		ID:                  county.ID,
		Name:                county.Name,
		Slug:                county.Slug,
		State:               county.State,
		BuildingDeptPhone:   county.BuildingDeptPhone,
		BuildingDeptEmail:   county.BuildingDeptEmail,
		BuildingDeptWebsite: county.BuildingDeptWebsite,
		CreatedAt:           county.CreatedAt,
	}
}
