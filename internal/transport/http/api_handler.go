package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// APIHandler serves the JSON endpoints of the booth.
type APIHandler struct {
	service *app.GameService
	log     *zap.Logger
}

func NewAPIHandler(service *app.GameService, log *zap.Logger) *APIHandler {
	return &APIHandler{service: service, log: log}
}

type registerResponse struct {
	Participant  domain.UserIdentity `json:"participant"`
	Participants int64               `json:"participants"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type startRequest struct {
	UserID string `json:"userId"`
}

type selectionRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

type answerRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

type compatibilityRequest struct {
	Application string   `json:"application"`
	Components  []string `json:"components"`
}

func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var identity domain.UserIdentity
	if !h.decode(w, r, &identity) {
		return
	}
	saved, count, err := h.service.Register(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Participant: saved, Participants: count})
}

func (h *APIHandler) ParticipantCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, err := h.service.ParticipantCount(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *APIHandler) StartGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req startRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.Start(r.Context(), req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *APIHandler) GetGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.GetSession(r.Context(), ps.ByName("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) Select(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req selectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.Select(r.Context(), ps.ByName("id"), req.QuestionIndex, req.Answer); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) Answer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.Submit(r.Context(), ps.ByName("id"), req.QuestionIndex, req.Answer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) Result(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.Result(r.Context(), ps.ByName("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			writeError(w, domain.Validationf("limit must be between 0 and 100"))
			return
		}
		limit = n
	}
	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) Grade(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	score, err := strconv.Atoi(ps.ByName("score"))
	if err != nil {
		writeError(w, domain.Validationf("score must be an integer"))
		return
	}
	writeJSON(w, http.StatusOK, h.service.Grade(score))
}

func (h *APIHandler) Catalog(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.service.Catalog())
}

func (h *APIHandler) Compatibility(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req compatibilityRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.Compatibility(req.Application, req.Components)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, domain.Validationf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, err)
}
