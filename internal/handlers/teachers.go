package handlers

import (
	"net/http"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/metrics"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

type TeacherHandler struct {
	service *app.Service
}

func NewTeacherHandler(service *app.Service) *TeacherHandler {
	return &TeacherHandler{
		service: service,
	}
}

func (h *TeacherHandler) HandleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.ListTeacherProfiles()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teachers": teachers,
	})
}

func (h *TeacherHandler) HandleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var profile models.TeacherProfile
	if err := decodeBody(r, &profile); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.service.AddTeacherProfile(actorFrom(r), profile)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("teacher", "create").Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"teacher": created,
		"message": "Teacher registered with default password",
	})
}

func (h *TeacherHandler) HandleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID, err := pathID(r, "teacherID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.RemoveTeacherProfile(actorFrom(r), teacherID); err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("teacher", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Teacher removed",
	})
}
