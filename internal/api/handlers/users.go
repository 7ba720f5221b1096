package handlers

import (
	"net/http"

	"querymap/internal/api/dto"
	"querymap/internal/api/utils"
	"querymap/internal/logger"
	"querymap/internal/users"
)

func NewUsersHandler(svc *users.Service, log logger.LoggerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListUsers(r.Context(), 1)
		if err != nil {
			if log != nil {
				log.Error("list users failed", err)
			}
			problemFor(users.ListOp, err).Write(w)
			return
		}
		utils.WriteJSON(w, http.StatusOK, dto.OperationResponse{
			API:       r.URL.Path,
			Operation: users.ListOp,
			Status:    "success",
			RowCount:  len(list),
			Rows:      list,
		})
	}
}
