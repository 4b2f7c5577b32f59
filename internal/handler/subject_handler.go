package handler

import (
	"github.com/isagps/ProfAgendaBack/internal/models"
	"github.com/isagps/ProfAgendaBack/internal/service"
)

// SubjectHandler serves the shared CRUD set for subjects.
type SubjectHandler struct {
	*CRUDHandler[models.Subject, service.CreateSubjectRequest, service.UpdateSubjectRequest]
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{
		CRUDHandler: NewCRUDHandler[models.Subject, service.CreateSubjectRequest, service.UpdateSubjectRequest](svc),
	}
}
