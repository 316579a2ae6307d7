package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arjunkv/auction-backend/internal/room"
	"github.com/arjunkv/auction-backend/internal/store"
	"github.com/arjunkv/auction-backend/internal/ws"
)

// SetupRoutes builds the router with the room and directory injected. The
// API is read-only: all auction mutation flows through the event channel.
func SetupRoutes(rm *room.Room, dir store.Directory, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(rm, log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/teams", ListTeams(dir, log))
		r.Get("/teams/{id}/squad", TeamSquad(dir, log))
		r.Get("/players", ListPlayers(dir, log))
		r.Get("/config", GetConfig(dir, log))
	})
	return r
}
