package handlers

import (
	serviceInterfaces "academic-records/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// RecordsHandler serves read-only views of the record stores
type RecordsHandler struct {
	records serviceInterfaces.RecordsService
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(records serviceInterfaces.RecordsService) *RecordsHandler {
	return &RecordsHandler{records: records}
}

// Stats handles GET /stats
func (h *RecordsHandler) Stats(c *gin.Context) {
	stats, err := h.records.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// ListStudents handles GET /students
func (h *RecordsHandler) ListStudents(c *gin.Context) {
	students, err := h.records.ListStudents(c.Request.Context(), limitQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, students)
}

// GetStudent handles GET /students/:ra
func (h *RecordsHandler) GetStudent(c *gin.Context) {
	ra, ok := intParam(c, "ra")
	if !ok {
		return
	}
	student, err := h.records.GetStudent(c.Request.Context(), ra)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, student)
}

// StudentClasses handles GET /students/:ra/classes
func (h *RecordsHandler) StudentClasses(c *gin.Context) {
	ra, ok := intParam(c, "ra")
	if !ok {
		return
	}
	classes, err := h.records.ClassesOfStudent(c.Request.Context(), ra)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, classes)
}

// ListClasses handles GET /classes
func (h *RecordsHandler) ListClasses(c *gin.Context) {
	classes, err := h.records.ListClasses(c.Request.Context(), limitQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, classes)
}

// GetClass handles GET /classes/:id
func (h *RecordsHandler) GetClass(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	class, err := h.records.GetClass(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, class)
}

// ClassStudents handles GET /classes/:id/students
func (h *RecordsHandler) ClassStudents(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	students, err := h.records.StudentsOfClass(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, students)
}

// ClassLessons handles GET /classes/:id/lessons, optionally narrowed with
// ?from=DD/MM/YYYY&to=DD/MM/YYYY
func (h *RecordsHandler) ClassLessons(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	from, to := c.Query("from"), c.Query("to")
	var err error
	var data interface{}
	if from != "" || to != "" {
		data, err = h.records.ListLessonsInPeriod(c.Request.Context(), id, from, to, limitQuery(c))
	} else {
		data, err = h.records.ListLessonsByClass(c.Request.Context(), id, limitQuery(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, data)
}

// ClassActivities handles GET /classes/:id/activities
func (h *RecordsHandler) ClassActivities(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	activities, err := h.records.ListActivitiesByClass(c.Request.Context(), id, limitQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, activities)
}
