package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isagps/ProfAgendaBack/internal/models"
	"github.com/isagps/ProfAgendaBack/internal/service"
	"github.com/isagps/ProfAgendaBack/pkg/response"
)

// ClassHandler serves class endpoints: the shared CRUD set plus per-class
// schedules and the timetable export.
type ClassHandler struct {
	*CRUDHandler[models.Class, service.CreateClassRequest, service.UpdateClassRequest]
	schedules *service.ScheduleService
	exports   *service.TimetableExportService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService, schedules *service.ScheduleService, exports *service.TimetableExportService) *ClassHandler {
	return &ClassHandler{
		CRUDHandler: NewCRUDHandler[models.Class, service.CreateClassRequest, service.UpdateClassRequest](svc),
		schedules:   schedules,
		exports:     exports,
	}
}

// Register mounts the class routes onto the group.
func (h *ClassHandler) Register(g *gin.RouterGroup) {
	h.CRUDHandler.Register(g)
	g.GET("/:id/schedules", h.Schedules)
	g.GET("/:id/timetable/export", h.ExportTimetable)
}

// Schedules godoc
// @Summary List a class's schedules
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedules [get]
func (h *ClassHandler) Schedules(c *gin.Context) {
	schedules, err := h.schedules.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ExportTimetable godoc
// @Summary Download a class timetable as CSV or PDF
// @Tags Classes
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /classes/{id}/timetable/export [get]
func (h *ClassHandler) ExportTimetable(c *gin.Context) {
	result, err := h.exports.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
