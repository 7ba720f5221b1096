package utils

import (
	"encoding/json"
	"net/http"
)

// Problem is the body of every non-2xx answer. Operation names the
// intercepted operation the failure belongs to, when there is one.
type Problem struct {
	Status    int            `json:"-"`
	Message   string         `json:"error"`
	Code      string         `json:"code"`
	Operation string         `json:"operation,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

func (p Problem) Write(w http.ResponseWriter) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	WriteJSON(w, p.Status, p)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
