package handler

import (
	eventdomain "github.com/rpypty/galleria/internal/domain/event"
	mediadomain "github.com/rpypty/galleria/internal/domain/media"
	"github.com/rpypty/galleria/pkg/logger"
)

type Handlers struct {
	Events *eventdomain.Service
	Media  *mediadomain.Service

	log logger.Logger
}

func New(events *eventdomain.Service, media *mediadomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Events: events,
		Media:  media,
		log:    log,
	}
}
