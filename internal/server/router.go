package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigbadman-lab/onesol/internal/interfaces"
)

// NewRouter registers every API endpoint on a chi router.
func NewRouter(cat interfaces.Catalog, repo *Repo, hub *Hub) http.Handler {
	h := NewHandler(cat, repo, hub)
	r := chi.NewRouter()

	r.Get("/api/health", h.HealthHandler)
	r.Head("/api/health", h.HealthHandler)

	r.Post("/api/trades/random", h.RandomTradeHandler)
	r.Get("/api/trades/{tradeId}", h.TradeByIDHandler)

	r.Get("/api/leaderboard/today", h.TodayHandler)
	r.Post("/api/leaderboard/submit", h.SubmitHandler)
	r.Get("/api/leaderboard/ws", hub.ServeWS)

	r.Get("/api/user/profile", h.ProfileGetHandler)
	r.Post("/api/user/profile", h.ProfileSaveHandler)
	r.Post("/api/user/delete", h.DeleteUserHandler)

	return r
}
