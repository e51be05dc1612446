package handlers

import (
	"net/http"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/metrics"
)

type EvaluationHandler struct {
	service *app.Service
}

func NewEvaluationHandler(service *app.Service) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
	}
}

type evaluationRequest struct {
	Content string `json:"content"`
}

func (h *EvaluationHandler) HandleListEvaluations(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}

	evaluations, err := h.service.ListEvaluations(actorFrom(r), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"evaluations": evaluations,
	})
}

func (h *EvaluationHandler) HandleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req evaluationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Content == "" {
		writeError(w, apperrors.Validation("evaluation content is required"))
		return
	}

	evaluation, err := h.service.AddEvaluation(actorFrom(r), memberID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("evaluation", "create").Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"evaluation": evaluation,
	})
}

func (h *EvaluationHandler) HandleDeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	evaluationID, err := pathID(r, "evaluationID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.RemoveEvaluation(actorFrom(r), evaluationID); err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("evaluation", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Evaluation removed",
	})
}
