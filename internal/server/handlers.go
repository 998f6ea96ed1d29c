package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigbadman-lab/onesol/internal/catalog"
	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/types"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// HandlerProvider wraps the catalog, score repo and websocket hub and
// exposes the HTTP handlers.
type HandlerProvider struct {
	catalog interfaces.Catalog
	repo    *Repo
	hub     *Hub
}

func NewHandler(cat interfaces.Catalog, repo *Repo, hub *Hub) *HandlerProvider {
	return &HandlerProvider{catalog: cat, repo: repo, hub: hub}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), "Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Empty body")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// --- Handlers ---

// HealthHandler handles GET and HEAD /api/health.
func (h *HandlerProvider) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type randomTradeRequest struct {
	ExcludeIDs []string `json:"excludeIds"`
}

// RandomTradeHandler handles POST /api/trades/random.
func (h *HandlerProvider) RandomTradeHandler(w http.ResponseWriter, r *http.Request) {
	var req randomTradeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	trade, err := h.catalog.RandomTrade(r.Context(), req.ExcludeIDs)
	if err != nil {
		if errors.Is(err, catalog.ErrNoTrades) {
			writeError(w, http.StatusNotFound, "No trades available")
			return
		}
		logger.Error(r.Context(), "Random trade lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

// TradeByIDHandler handles GET /api/trades/{tradeId}.
func (h *HandlerProvider) TradeByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tradeId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing trade id")
		return
	}

	trade, err := h.catalog.TradeByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Trade not found")
			return
		}
		logger.Error(r.Context(), "Trade lookup failed", "error", err, "trade_id", id)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

// TodayHandler handles GET /api/leaderboard/today.
func (h *HandlerProvider) TodayHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.Today(r.Context(), today(), 50)
	if err != nil {
		logger.Error(r.Context(), "Leaderboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if entries == nil {
		entries = []types.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// SubmitHandler handles POST /api/leaderboard/submit. A successful submit
// pushes refreshed standings to every websocket subscriber.
func (h *HandlerProvider) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var sub types.ScoreSubmission
	if !decodeBody(w, r, &sub) {
		return
	}
	if sub.UUID == "" || sub.FriendlyName == "" {
		writeError(w, http.StatusBadRequest, "uuid and friendly_name are required")
		return
	}
	if sub.FinalSol < 0 || sub.CorrectCount < 0 {
		writeError(w, http.StatusBadRequest, "Invalid score values")
		return
	}
	if sub.Email != "" && !emailRe.MatchString(sub.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	if err := h.repo.SubmitScore(r.Context(), today(), sub); err != nil {
		logger.Error(r.Context(), "Score submit failed", "error", err, "uuid", sub.UUID)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if entries, err := h.repo.Today(r.Context(), today(), 50); err == nil {
		h.hub.Broadcast("leaderboard_update", map[string]any{"leaderboard": entries})
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProfileGetHandler handles GET /api/user/profile?uuid=...
func (h *HandlerProvider) ProfileGetHandler(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Query().Get("uuid")
	if uuid == "" {
		writeError(w, http.StatusBadRequest, "Missing uuid")
		return
	}

	p, err := h.repo.GetProfile(r.Context(), uuid)
	if err != nil {
		logger.Error(r.Context(), "Profile lookup failed", "error", err, "uuid", uuid)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if p == nil {
		p = &types.Profile{UUID: uuid}
	}
	writeJSON(w, http.StatusOK, p)
}

// ProfileSaveHandler handles POST /api/user/profile.
func (h *HandlerProvider) ProfileSaveHandler(w http.ResponseWriter, r *http.Request) {
	var p types.Profile
	if !decodeBody(w, r, &p) {
		return
	}
	if p.UUID == "" {
		writeError(w, http.StatusBadRequest, "Missing uuid")
		return
	}
	if p.Email != "" && !emailRe.MatchString(p.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	if err := h.repo.UpsertProfile(r.Context(), p); err != nil {
		logger.Error(r.Context(), "Profile save failed", "error", err, "uuid", p.UUID)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type deleteUserRequest struct {
	UUID string `json:"uuid"`
}

// DeleteUserHandler handles POST /api/user/delete.
func (h *HandlerProvider) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UUID == "" {
		writeError(w, http.StatusBadRequest, "Missing uuid")
		return
	}

	if err := h.repo.DeleteUser(r.Context(), req.UUID); err != nil {
		logger.Error(r.Context(), "User delete failed", "error", err, "uuid", req.UUID)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
