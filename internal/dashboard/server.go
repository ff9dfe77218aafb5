package dashboard

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"clinical-scribe/internal/store"
)

//go:embed static/*
var staticFiles embed.FS

// NewRouter constructs the dashboard HTTP router: the record API, the
// WebSocket feed and the embedded UI.
func NewRouter(st *store.Store, hub *Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", listRecords(st))
		r.Get("/records/{name}", getRecord(st))
	})

	r.Get("/ws", hub.ServeWS)

	staticFS, _ := fs.Sub(staticFiles, "static")
	r.Handle("/*", http.FileServer(http.FS(staticFS)))

	return r
}

func listRecords(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := st.List()
		if err != nil {
			log.Error().Err(err).Msg("record listing failed")
			writeError(w, http.StatusInternalServerError, "could not list records")
			return
		}
		if records == nil {
			records = []store.Record{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})
	}
}

func getRecord(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		payload, err := st.Load(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				writeError(w, http.StatusNotFound, "record not found")
				return
			}
			log.Warn().Err(err).Str("name", name).Msg("record load failed")
			writeError(w, http.StatusBadRequest, "could not load record")
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
