package common

import (
	userdomain "permit-tracker-go/internal/domain/user"
	"permit-tracker-go/pkg/logger"
)

type Handlers struct {
	Users *userdomain.Service
	log   logger.Logger
}

func New(users *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Users: users,
		log:   log,
	}
}
