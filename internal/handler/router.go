package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every entity handler for route registration.
type Handlers struct {
	Teachers  *TeacherHandler
	Subjects  *SubjectHandler
	Classes   *ClassHandler
	Schedules *ScheduleHandler
}

// RegisterRoutes mounts every entity group under the API prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	api := r.Group(prefix)

	h.Teachers.Register(api.Group("/teachers"))
	h.Subjects.Register(api.Group("/subjects"))
	h.Classes.Register(api.Group("/classes"))
	h.Schedules.Register(api.Group("/schedules"))
}
