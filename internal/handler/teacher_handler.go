package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isagps/ProfAgendaBack/internal/models"
	"github.com/isagps/ProfAgendaBack/internal/service"
	"github.com/isagps/ProfAgendaBack/pkg/response"
)

// TeacherHandler serves teacher endpoints: the shared CRUD set plus subject
// links and per-teacher schedules.
type TeacherHandler struct {
	*CRUDHandler[models.Teacher, service.CreateTeacherRequest, service.UpdateTeacherRequest]
	service   *service.TeacherService
	schedules *service.ScheduleService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(svc *service.TeacherService, schedules *service.ScheduleService) *TeacherHandler {
	return &TeacherHandler{
		CRUDHandler: NewCRUDHandler[models.Teacher, service.CreateTeacherRequest, service.UpdateTeacherRequest](svc),
		service:     svc,
		schedules:   schedules,
	}
}

// Register mounts the teacher routes onto the group.
func (h *TeacherHandler) Register(g *gin.RouterGroup) {
	h.CRUDHandler.Register(g)
	g.GET("/:id/details", h.GetDetail)
	g.GET("/:id/subjects", h.Subjects)
	g.GET("/:id/schedules", h.Schedules)
}

// GetDetail godoc
// @Summary Get teacher with linked subjects
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/details [get]
func (h *TeacherHandler) GetDetail(c *gin.Context) {
	detail, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Subjects godoc
// @Summary List subjects linked to a teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects [get]
func (h *TeacherHandler) Subjects(c *gin.Context) {
	subjects, err := h.service.Subjects(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Schedules godoc
// @Summary List a teacher's schedules
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/schedules [get]
func (h *TeacherHandler) Schedules(c *gin.Context) {
	schedules, err := h.schedules.ListByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}
