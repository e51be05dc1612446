package handlers

import (
	"net/http"
	"strconv"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
)

type StatsHandler struct {
	service *app.Service
}

func NewStatsHandler(service *app.Service) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

func (h *StatsHandler) HandleYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Scores.Years(actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"years": years,
	})
}

func (h *StatsHandler) HandleYearReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1900 || year > 3000 {
		writeError(w, apperrors.Validation("invalid year in path"))
		return
	}

	report, err := h.service.Scores.Report(actorFrom(r), year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": report,
	})
}

func (h *StatsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
