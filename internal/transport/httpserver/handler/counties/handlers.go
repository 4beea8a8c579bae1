package counties

import (
	checklistdomain "permit-tracker-go/internal/domain/checklist"
	countydomain "permit-tracker-go/internal/domain/county"
	"permit-tracker-go/pkg/logger"
)

type Handlers struct {
	Counties   *countydomain.Service
	Checklists *checklistdomain.Service
	log        logger.Logger
}

func New(counties *countydomain.Service, checklists *checklistdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Counties:   counties,
		Checklists: checklists,
		log:        log,
	}
}
