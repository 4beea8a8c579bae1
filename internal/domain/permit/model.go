package permit

import "time"

type ProjectType string

const (
	ProjectResidentialNew        ProjectType = "residential_new"
	ProjectResidentialRenovation ProjectType = "residential_renovation"
	ProjectCommercialNew         ProjectType = "commercial_new"
	ProjectCommercialRenovation  ProjectType = "commercial_renovation"
	ProjectIndustrial            ProjectType = "industrial"
	ProjectMultiFamily           ProjectType = "multi_family"
	ProjectAccessoryStructure    ProjectType = "accessory_structure"
)

var ProjectTypes = []ProjectType{
	ProjectResidentialNew,
	ProjectResidentialRenovation,
	ProjectCommercialNew,
	ProjectCommercialRenovation,
	ProjectIndustrial,
	ProjectMultiFamily,
	ProjectAccessoryStructure,
}

func (p ProjectType) Valid() bool {
	for _, candidate := range ProjectTypes {
		if p == candidate {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusDraft       Status = "draft"
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusIssued      Status = "issued"
	StatusExpired     Status = "expired"
)

var Statuses = []Status{
	StatusDraft,
	StatusPending,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusIssued,
	StatusExpired,
}

func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

type Package struct {
	ID                string `gorm:"primaryKey"`
	Name              string `gorm:"not null"`
	Description       *string
	ProjectAddress    string      `gorm:"not null"`
	ProjectType       ProjectType `gorm:"type:text;not null"`
	ConstructionValue *int64
	Status            Status `gorm:"type:text;not null;default:draft"`
	CountyID          string `gorm:"not null;index"`
	OwnerID           string `gorm:"not null;index"`
	PermitNumber      *string
	SubmittedAt       *time.Time
	ApprovedAt        *time.Time
	IssuedAt          *time.Time
	ExpiresAt         *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Package) TableName() string {
	return "permit_packages"
}

type CreatePackageInput struct {
	Name              string
	Description       string
	ProjectAddress    string
	ProjectType       ProjectType
	ConstructionValue *int64
	Status            *Status
	CountyID          string
	PermitNumber      string
	ExpiresAt         *time.Time
}

type UpdatePackageInput struct {
	Name              *string
	Description       *string
	ProjectAddress    *string
	ProjectType       *ProjectType
	ConstructionValue *int64
	Status            *Status
	CountyID          *string
	PermitNumber      *string
	ExpiresAt         *time.Time
}

func (in UpdatePackageInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.ProjectAddress == nil &&
		in.ProjectType == nil && in.ConstructionValue == nil && in.Status == nil &&
		in.CountyID == nil && in.PermitNumber == nil && in.ExpiresAt == nil
}

type ListFilter struct {
	CountyID string
	Status   Status
	Search   string
}

// Stats groups an owner's packages into the dashboard buckets.
type Stats struct {
	Active      int64
	Approved    int64
	UnderReview int64
	Issues      int64
}

type DeleteResult struct {
	RemovedObjects []string
	FailedObjects  []string
}
