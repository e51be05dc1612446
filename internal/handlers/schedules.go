package handlers

import (
	"net/http"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/metrics"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

type ScheduleHandler struct {
	service *app.Service
}

func NewScheduleHandler(service *app.Service) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
	}
}

func (h *ScheduleHandler) HandleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.service.ListSchedules()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schedules": schedules,
	})
}

func (h *ScheduleHandler) HandleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule models.Schedule
	if err := decodeBody(r, &schedule); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.service.AddSchedule(actorFrom(r), schedule)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("schedule", "create").Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"schedule": created,
	})
}

func (h *ScheduleHandler) HandleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := pathID(r, "scheduleID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.RemoveSchedule(actorFrom(r), scheduleID); err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("schedule", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Schedule removed",
	})
}
