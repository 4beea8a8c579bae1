package packages

import (
	checklistdomain "permit-tracker-go/internal/domain/checklist"
	documentdomain "permit-tracker-go/internal/domain/document"
	permitdomain "permit-tracker-go/internal/domain/permit"
	"permit-tracker-go/pkg/logger"
)

type Handlers struct {
	Packages   *permitdomain.Service
	Checklists *checklistdomain.Service
	Documents  *documentdomain.Service
	log        logger.Logger
}

func New(packages *permitdomain.Service, checklists *checklistdomain.Service, documents *documentdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Packages:   packages,
		Checklists: checklists,
		Documents:  documents,
		log:        log,
	}
}
