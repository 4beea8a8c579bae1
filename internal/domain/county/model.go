package county

import (
	"strings"
	"time"
)

const DefaultState = "FL"

type County struct {
	ID                  string `gorm:"primaryKey"`
	Name                string `gorm:"not null;uniqueIndex"`
	Slug                string `gorm:"not null;uniqueIndex"`
	State               string `gorm:"not null;default:FL"`
	BuildingDeptPhone   *string
	BuildingDeptEmail   *string
	BuildingDeptWebsite *string
	CreatedAt           time.Time `gorm:"autoCreateTime"`
}

func (County) TableName() string {
	return "counties"
}

type CreateCountyInput struct {
	Name                string
	Slug                string
	State               string
	BuildingDeptPhone   string
	BuildingDeptEmail   string
	BuildingDeptWebsite string
}

// Slugify lowercases name and collapses every run of characters outside
// [a-z0-9] into a single dash.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
