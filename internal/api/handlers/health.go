package handlers

import (
	"context"
	"net/http"
	"time"

	"querymap/internal/api/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			utils.Problem{Status: http.StatusServiceUnavailable, Message: "Database connection unavailable", Code: "DB_UNAVAILABLE"}.Write(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			utils.Problem{Status: http.StatusServiceUnavailable, Message: "Database connection failed", Code: "DB_UNAVAILABLE"}.Write(w)
			return
		}

		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
