package handlers

import (
	"net/http"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/metrics"
)

type StudentHandler struct {
	service *app.Service
}

func NewStudentHandler(service *app.Service) *StudentHandler {
	return &StudentHandler{
		service: service,
	}
}

func (h *StudentHandler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListStudents(actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
	})
}

func (h *StudentHandler) HandleListAvailableStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListAvailableStudents(actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
	})
}

func (h *StudentHandler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.RemoveStudent(actorFrom(r), studentID); err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("student", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Student account removed",
	})
}
