package server

import "net/http"

type endpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type discoveryResponse struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	Endpoints []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:    "Turnwheel API",
		Version: "0.1.0",
		Endpoints: []endpointInfo{
			{"GET", "/api/v1/", "API discovery"},
			{"GET", "/api/v1/health", "Server health"},
			{"GET", "/api/v1/sessions", "List recorded replay sessions"},
			{"GET", "/api/v1/sessions/{id}", "Get one session"},
			{"GET", "/api/v1/sessions/{id}/steps", "List a session's recorded steps"},
			{"POST", "/api/v1/replays", "Replay a trace document and record the session"},
		},
	})
}
