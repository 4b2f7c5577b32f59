package handler

import (
	"github.com/isagps/ProfAgendaBack/internal/models"
	"github.com/isagps/ProfAgendaBack/internal/service"
)

// ScheduleHandler serves the shared CRUD set for schedules. The teacher and
// class handlers expose the scoped schedule listings.
type ScheduleHandler struct {
	*CRUDHandler[models.Schedule, service.ScheduleRequest, service.ScheduleRequest]
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		CRUDHandler: NewCRUDHandler[models.Schedule, service.ScheduleRequest, service.ScheduleRequest](svc),
	}
}
