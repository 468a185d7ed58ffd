package api

import (
	"log/slog"
	"net/http"

	"github.com/sydlexius/songscape/internal/api/middleware"
	"github.com/sydlexius/songscape/internal/explore"
)

// handleArtist looks up an artist by free-text name. It always answers 200:
// a blank name lists every artist, an unknown one yields {}.
// GET /api/artist?name=
func (r *Router) handleArtist(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Query().Get("name")
	resp := r.explorer.Query(req.Context(), name)

	if resp.Mode == explore.ModeArtist {
		r.logger.Debug("artist lookup",
			slog.String("request_id", middleware.RequestIDFromContext(req.Context())),
			slog.String("query", name),
			slog.String("matched", resp.Artist.MatchedName))
	}
	writeJSON(w, http.StatusOK, resp)
}
