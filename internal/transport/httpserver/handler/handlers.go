package handler

import (
	"permit-tracker-go/internal/transport/httpserver/handler/common"
	"permit-tracker-go/internal/transport/httpserver/handler/counties"
	"permit-tracker-go/internal/transport/httpserver/handler/objects"
	"permit-tracker-go/internal/transport/httpserver/handler/packages"
)

type Handlers struct {
	Common   *common.Handlers
	Counties *counties.Handlers
	Packages *packages.Handlers
	Objects  *objects.Handlers
}

func New(common *common.Handlers, counties *counties.Handlers, packages *packages.Handlers, objects *objects.Handlers) *Handlers {
	return &Handlers{
		Common:   common,
		Counties: counties,
		Packages: packages,
		Objects:  objects,
	}
}
