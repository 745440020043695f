package server

import (
	"fmt"
	"net/http"
)

// TestHandler is the liveness probe.
func (s *Server) TestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("Hello from backend!"))
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  "fail",
			"message": fmt.Sprintf("Can't find %s on this server!", r.URL.RequestURI()),
		})
	}
}
