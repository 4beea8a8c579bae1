// Package seed loads the reference data every deployment needs: Florida
// counties and the checklist definitions per county and project type.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	checklistdomain "permit-tracker-go/internal/domain/checklist"
	countydomain "permit-tracker-go/internal/domain/county"
	documentdomain "permit-tracker-go/internal/domain/document"
	permitdomain "permit-tracker-go/internal/domain/permit"
	"permit-tracker-go/pkg/logger"
)

//go:embed data.yaml
var embeddedData []byte

type Data struct {
	State           string           `yaml:"state"`
	Counties        []County         `yaml:"counties"`
	Templates       []Template       `yaml:"templates"`
	CountyTemplates []CountyTemplate `yaml:"countyTemplates"`
}

type County struct {
	Name    string `yaml:"name"`
	Slug    string `yaml:"slug"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Website string `yaml:"website"`
}

type Template struct {
	ProjectType permitdomain.ProjectType `yaml:"projectType"`
	Items       []Item                   `yaml:"items"`
}

type CountyTemplate struct {
	County      string                   `yaml:"county"`
	ProjectType permitdomain.ProjectType `yaml:"projectType"`
	Items       []Item                   `yaml:"items"`
}

type Item struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Category     string `yaml:"category"`
	DocumentType string `yaml:"documentType"`
	Required     bool   `yaml:"required"`
	Order        int    `yaml:"order"`
}

type Result struct {
	CountiesCreated int
	CountiesExisted int
	ItemsCreated    int
	ItemsExisted    int
}

type CountyEnsurer interface {
	Ensure(ctx context.Context, input countydomain.CreateCountyInput) (*countydomain.County, bool, error)
}

type ItemEnsurer interface {
	EnsureItem(ctx context.Context, input checklistdomain.CreateItemInput) (*checklistdomain.Item, bool, error)
}

// Default returns the data compiled into the binary.
func Default() (Data, error) {
	return Parse(embeddedData)
}

// Parse decodes and validates seed data. Unknown keys are rejected so that
// typos do not silently drop requirements.
func Parse(raw []byte) (Data, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)

	var data Data
	if err := decoder.Decode(&data); err != nil {
		return Data{}, fmt.Errorf("decode seed data: %w", err)
	}
	if err := data.validate(); err != nil {
		return Data{}, err
	}
	return data, nil
}

func (d Data) validate() error {
	slugs := make(map[string]bool, len(d.Counties))
	for _, county := range d.Counties {
		if strings.TrimSpace(county.Name) == "" {
			return fmt.Errorf("seed: county without name")
		}
		slug := county.slug()
		if slugs[slug] {
			return fmt.Errorf("seed: duplicate county slug %q", slug)
		}
		slugs[slug] = true
	}

	for _, tmpl := range d.Templates {
		if err := validateItems(tmpl.ProjectType, tmpl.Items); err != nil {
			return err
		}
	}
	for _, tmpl := range d.CountyTemplates {
		if !slugs[tmpl.County] {
			return fmt.Errorf("seed: county template references unknown county %q", tmpl.County)
		}
		if err := validateItems(tmpl.ProjectType, tmpl.Items); err != nil {
			return err
		}
	}
	return nil
}

func validateItems(projectType permitdomain.ProjectType, items []Item) error {
	if !projectType.Valid() {
		return fmt.Errorf("seed: unknown project type %q", projectType)
	}
	titles := make(map[string]bool, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("seed: %s item without title", projectType)
		}
		if titles[item.Title] {
			return fmt.Errorf("seed: duplicate %s item %q", projectType, item.Title)
		}
		titles[item.Title] = true
		if item.DocumentType != "" && !documentdomain.Type(item.DocumentType).Valid() {
			return fmt.Errorf("seed: item %q has unknown document type %q", item.Title, item.DocumentType)
		}
	}
	return nil
}

func (c County) slug() string {
	if slug := strings.TrimSpace(c.Slug); slug != "" {
		return slug
	}
	return countydomain.Slugify(c.Name)
}

type Seeder struct {
	counties CountyEnsurer
	items    ItemEnsurer
	log      logger.Logger
}

func NewSeeder(counties CountyEnsurer, items ItemEnsurer, log logger.Logger) *Seeder {
	return &Seeder{counties: counties, items: items, log: log}
}

// Run creates whatever part of data is missing. Running it again is a no-op.
func (s *Seeder) Run(ctx context.Context, data Data) (Result, error) {
	var result Result
	countyIDs := make(map[string]string, len(data.Counties))

	for _, seed := range data.Counties {
		county, created, err := s.counties.Ensure(ctx, countydomain.CreateCountyInput{
			Name:                seed.Name,
			Slug:                seed.slug(),
			State:               data.State,
			BuildingDeptPhone:   seed.Phone,
			BuildingDeptEmail:   seed.Email,
			BuildingDeptWebsite: seed.Website,
		})
		if err != nil {
			return result, fmt.Errorf("seed county %s: %w", seed.Name, err)
		}
		if created {
			result.CountiesCreated++
		} else {
			result.CountiesExisted++
		}
		countyIDs[county.Slug] = county.ID
	}
	s.log.Info("seed: counties ready", "created", result.CountiesCreated, "existing", result.CountiesExisted)

	for _, seed := range data.Counties {
		countyID := countyIDs[seed.slug()]
		for _, tmpl := range data.Templates {
			if err := s.ensureItems(ctx, countyID, tmpl.ProjectType, tmpl.Items, &result); err != nil {
				return result, err
			}
		}
	}
	for _, tmpl := range data.CountyTemplates {
		if err := s.ensureItems(ctx, countyIDs[tmpl.County], tmpl.ProjectType, tmpl.Items, &result); err != nil {
			return result, err
		}
	}
	s.log.Info("seed: checklist items ready", "created", result.ItemsCreated, "existing", result.ItemsExisted)

	return result, nil
}

func (s *Seeder) ensureItems(ctx context.Context, countyID string, projectType permitdomain.ProjectType, items []Item, result *Result) error {
	for _, item := range items {
		_, created, err := s.items.EnsureItem(ctx, checklistdomain.CreateItemInput{
			CountyID:     countyID,
			ProjectType:  projectType,
			Title:        item.Title,
			Description:  item.Description,
			IsRequired:   item.Required,
			DocumentType: item.DocumentType,
			Category:     item.Category,
			Order:        item.Order,
		})
		if err != nil {
			return fmt.Errorf("seed checklist item %q: %w", item.Title, err)
		}
		if created {
			result.ItemsCreated++
		} else {
			result.ItemsExisted++
		}
	}
	return nil
}
