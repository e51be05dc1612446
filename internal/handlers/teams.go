package handlers

import (
	"net/http"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/metrics"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/roster"
)

type TeamHandler struct {
	service *app.Service
}

func NewTeamHandler(service *app.Service) *TeamHandler {
	return &TeamHandler{
		service: service,
	}
}

func (h *TeamHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.Roster.ListTeams(actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
	})
}

func (h *TeamHandler) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var input roster.TeamInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	team, err := h.service.Roster.CreateTeam(actorFrom(r), input)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("team", "create").Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"team":    team,
		"message": "Team created",
	})
}

func (h *TeamHandler) HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Roster.DeleteTeam(actorFrom(r), teamID); err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("team", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Team and its roster deleted",
	})
}

func (h *TeamHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.service.Roster.TeamMembers(teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"members": members,
	})
}

func (h *TeamHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(w, err)
		return
	}

	var input roster.MemberInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	member, err := h.service.Roster.AddMember(actorFrom(r), teamID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("member", "create").Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"member":  member,
		"message": "Member added to team",
	})
}

func (h *TeamHandler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}

	var input roster.MemberInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	member, err := h.service.Roster.UpdateMember(actorFrom(r), memberID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("member", "update").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"member":  member,
		"message": "Member updated",
	})
}

func (h *TeamHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Roster.RemoveMember(actorFrom(r), memberID); err != nil {
		writeError(w, err)
		return
	}

	metrics.RosterMutationsTotal.WithLabelValues("member", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Member removed from team",
	})
}
