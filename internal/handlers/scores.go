package handlers

import (
	"net/http"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/access"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/metrics"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/scoring"
)

type ScoreHandler struct {
	service *app.Service
}

func NewScoreHandler(service *app.Service) *ScoreHandler {
	return &ScoreHandler{
		service: service,
	}
}

func (h *ScoreHandler) HandleListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.service.Scores.List(actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scores": scores,
	})
}

func (h *ScoreHandler) HandleMemberScores(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}

	scores, err := h.service.Scores.ListByMember(actorFrom(r), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scores": scores,
	})
}

func (h *ScoreHandler) HandleCreateScore(w http.ResponseWriter, r *http.Request) {
	var input scoring.ScoreInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	score, err := h.service.Scores.Create(actorFrom(r), input)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.service.Store.GetScoreDetail(score.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.ScoreEventsTotal.WithLabelValues(detail.Subject, "create").Inc()
	metrics.ScorePctHistogram.WithLabelValues(detail.Subject).
		Observe(access.Pct(score.RawScore, score.MaxScore))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"score":   detail,
		"message": "Score recorded",
	})
}

func (h *ScoreHandler) HandleUpdateScore(w http.ResponseWriter, r *http.Request) {
	scoreID, err := pathID(r, "scoreID")
	if err != nil {
		writeError(w, err)
		return
	}

	var input scoring.UpdateScoreInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	score, err := h.service.Scores.Update(actorFrom(r), scoreID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.service.Store.GetScoreDetail(score.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.ScoreEventsTotal.WithLabelValues(detail.Subject, "update").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"score":   detail,
		"message": "Score updated",
	})
}

func (h *ScoreHandler) HandleDeleteScore(w http.ResponseWriter, r *http.Request) {
	scoreID, err := pathID(r, "scoreID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Scores.Delete(actorFrom(r), scoreID); err != nil {
		writeError(w, err)
		return
	}

	metrics.ScoreEventsTotal.WithLabelValues("", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Score deleted",
	})
}
