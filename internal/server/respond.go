package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func (s *Server) jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]any{"success": false, "message": message})
}

// decodeValid decodes the JSON body into req and runs struct validation.
// On failure it writes the 400 response and returns false.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}
