package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// errResponse is the JSON body of every failed request.
type errResponse struct {
	Status  int    `json:"status"`
	Message string `json:"error"`
}

// Render implements render.Renderer.
func (e *errResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	if rerr := render.Render(w, r, &errResponse{Status: status, Message: err.Error()}); rerr != nil {
		http.Error(w, err.Error(), status)
	}
}
