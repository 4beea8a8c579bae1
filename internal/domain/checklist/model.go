package checklist

import (
	"time"

	"permit-tracker-go/internal/domain/permit"
)

const DefaultCategory = "General"

// Item is one entry of a jurisdiction's checklist for a project type.
// Items are written by seeding only.
type Item struct {
	ID           string             `gorm:"primaryKey"`
	CountyID     string             `gorm:"not null;uniqueIndex:idx_checklist_items_definition,priority:1"`
	ProjectType  permit.ProjectType `gorm:"type:text;not null;uniqueIndex:idx_checklist_items_definition,priority:2"`
	Title        string             `gorm:"not null;uniqueIndex:idx_checklist_items_definition,priority:3"`
	Description  *string
	IsRequired   bool    `gorm:"not null"`
	DocumentType *string `gorm:"type:text"`
	Category     string  `gorm:"not null;default:General"`
	Order        int     `gorm:"column:sort_order;not null;default:0"`
	CreatedAt    time.Time
}

func (Item) TableName() string {
	return "checklist_items"
}

// Progress is a package's state for one checklist item. There is at most
// one row per (package, item).
type Progress struct {
	ID              string `gorm:"primaryKey"`
	PackageID       string `gorm:"not null;uniqueIndex:idx_progress_package_item,priority:1"`
	ChecklistItemID string `gorm:"not null;uniqueIndex:idx_progress_package_item,priority:2"`
	IsCompleted     bool   `gorm:"not null;default:false"`
	CompletedAt     *time.Time
	Notes           string `gorm:"not null;default:''"`
	Version         int    `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Progress) TableName() string {
	return "package_checklist_progress"
}

type CreateItemInput struct {
	CountyID     string
	ProjectType  permit.ProjectType
	Title        string
	Description  string
	IsRequired   bool
	DocumentType string
	Category     string
	Order        int
}

type UpdateProgressInput struct {
	IsCompleted bool
	Notes       string
	// ExpectedVersion, when set, must equal the stored version (0 when the
	// row does not exist yet) for the write to go through.
	ExpectedVersion *int
}

type Summary struct {
	Total             int
	Completed         int
	RequiredTotal     int
	RequiredCompleted int
	Percent           int
}
