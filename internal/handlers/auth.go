package handlers

import (
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
)

type AuthHandler struct {
	service *app.Service
}

func NewAuthHandler(service *app.Service) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Handle == "" || req.Password == "" {
		writeError(w, apperrors.Validation("handle and password are required"))
		return
	}

	token, account, err := h.service.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		logger.Debug.Printf("Login failed for %q: %v", req.Handle, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":   token,
		"account": account,
	})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get(h.service.Sessions.TokenHeader())
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if err := h.service.Sessions.Destroy(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged out",
	})
}

func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"actor": actorFrom(r),
	})
}
