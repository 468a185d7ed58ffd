package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/sydlexius/songscape/internal/version"
)

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	Artists    int    `json:"artists"`
	Lyrics     int    `json:"lyrics"`
	GraphNodes int    `json:"graph_nodes"`
	GraphEdges int    `json:"graph_edges"`
	Time       string `json:"time"`
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	stats := r.corpus.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Version:    version.Version,
		Commit:     version.Commit,
		Artists:    stats.Artists,
		Lyrics:     stats.Lyrics,
		GraphNodes: stats.GraphNodes,
		GraphEdges: stats.GraphEdges,
		Time:       time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
