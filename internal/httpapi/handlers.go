package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arjunkv/auction-backend/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	// The live screens poll these endpoints between lots; stale caches
	// show wrong budgets on the projector.
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func ListTeams(dir store.Directory, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := dir.ListTeams(r.Context())
		if err != nil {
			log.Error("listing teams failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "listing teams failed")
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func TeamSquad(dir store.Directory, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid team id")
			return
		}
		squad, err := dir.TeamSquad(r.Context(), id)
		if err != nil {
			log.Error("loading squad failed", zap.Int64("team_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "loading squad failed")
			return
		}
		writeJSON(w, http.StatusOK, squad)
	}
}

func ListPlayers(dir store.Directory, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := dir.ListPlayers(r.Context())
		if err != nil {
			log.Error("listing players failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "listing players failed")
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func GetConfig(dir store.Directory, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := dir.Config(r.Context())
		if err != nil {
			log.Error("loading config failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "loading config failed")
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
