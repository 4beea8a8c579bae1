package document

import "time"

type Type string

const (
	TypeApplicationForm      Type = "application_form"
	TypeSitePlan             Type = "site_plan"
	TypeFloorPlan            Type = "floor_plan"
	TypeStructuralDetails    Type = "structural_details"
	TypeElectricalSchematics Type = "electrical_schematics"
	TypeMechanicalPlans      Type = "mechanical_plans"
	TypePlumbingPlans        Type = "plumbing_plans"
	TypeSpecialInspections   Type = "special_inspections"
	TypeFloodCertificate     Type = "flood_certificate"
	TypeEnvironmentalPermit  Type = "environmental_permit"
	TypeImpactFeeCalculation Type = "impact_fee_calculation"
	TypePropertySurvey       Type = "property_survey"
	TypeEasementAgreement    Type = "easement_agreement"
	TypeProductApproval      Type = "product_approval"
	TypeEnergyCompliance     Type = "energy_compliance"
	TypeFireDeptApproval     Type = "fire_dept_approval"
	TypeOther                Type = "other"
)

var Types = []Type{
	TypeApplicationForm,
	TypeSitePlan,
	TypeFloorPlan,
	TypeStructuralDetails,
	TypeElectricalSchematics,
	TypeMechanicalPlans,
	TypePlumbingPlans,
	TypeSpecialInspections,
	TypeFloodCertificate,
	TypeEnvironmentalPermit,
	TypeImpactFeeCalculation,
	TypePropertySurvey,
	TypeEasementAgreement,
	TypeProductApproval,
	TypeEnergyCompliance,
	TypeFireDeptApproval,
	TypeOther,
}

func (t Type) Valid() bool {
	for _, candidate := range Types {
		if t == candidate {
			return true
		}
	}
	return false
}

// Document references an uploaded file. The bytes live in the object store
// under ObjectPath; the row only describes them.
type Document struct {
	ID               string    `gorm:"primaryKey"`
	PackageID        string    `gorm:"not null;index:idx_package_documents_package,priority:1"`
	FileName         string    `gorm:"not null"`
	OriginalFileName string    `gorm:"not null"`
	FileSize         int64     `gorm:"not null"`
	MimeType         string    `gorm:"not null"`
	DocumentType     Type      `gorm:"type:text;not null"`
	ObjectPath       string    `gorm:"not null;index:idx_package_documents_object_path"`
	UploadedBy       string    `gorm:"not null"`
	CreatedAt        time.Time `gorm:"index:idx_package_documents_package,priority:2"`
}

func (Document) TableName() string {
	return "package_documents"
}

type RecordInput struct {
	// Locator is the object path or upload URL returned when the upload
	// handle was issued.
	Locator          string
	FileName         string
	OriginalFileName string
	FileSize         int64
	MimeType         string
	DocumentType     Type
}

type DeleteResult struct {
	ObjectPath string
	// ObjectRetained is set when another document still references the
	// object, so it was left in the store.
	ObjectRetained bool
	// ObjectErr is set when the row was removed but the stored object could
	// not be.
	ObjectErr error
}
