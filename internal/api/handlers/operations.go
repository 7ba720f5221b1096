package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"querymap/internal/api/dto"
	"querymap/internal/api/utils"
	"querymap/internal/db"
	"querymap/internal/intercept"
	"querymap/internal/logger"
	"querymap/internal/mapping"
)

const invokeMaxBodyBytes = 1 << 20

type invokeRequest struct {
	Args []any `json:"args,omitempty"`
}

func NewOperationsListHandler(engine *intercept.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := engine.Registry()
		resp := dto.OperationList{
			Status:     "success",
			Operations: make([]dto.OperationInfo, 0, reg.Len()),
		}
		for _, name := range reg.Names() {
			d, _ := reg.Lookup(name)
			resp.Operations = append(resp.Operations, dto.OperationInfo{
				Name:   d.Name(),
				Query:  d.Query(),
				Target: d.Target().String(),
			})
		}
		utils.WriteJSON(w, http.StatusOK, resp)
	}
}

var invalidJSON = utils.Problem{Status: http.StatusBadRequest, Message: "Invalid JSON body", Code: "INVALID_JSON"}

// NewInvokeHandler runs the operation named in the {name} path segment and
// writes the mapped rows. An optional JSON body {"args": [...]} is passed
// through as call arguments.
func NewInvokeHandler(engine *intercept.Engine, log logger.LoggerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		r.Body = http.MaxBytesReader(w, r.Body, invokeMaxBodyBytes)
		defer r.Body.Close()

		var req invokeRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			invalidJSON.Write(w)
			return
		}
		if err := ensureEOF(dec); err != nil {
			invalidJSON.Write(w)
			return
		}

		rows, err := engine.Invoke(r.Context(), intercept.Call{Operation: name, Args: req.Args})
		if err != nil {
			p := problemFor(name, err)
			if log != nil && p.Status >= http.StatusInternalServerError {
				log.Error(fmt.Sprintf("operation %s failed", name), err)
			}
			p.Write(w)
			return
		}

		utils.WriteJSON(w, http.StatusOK, dto.OperationResponse{
			API:       r.URL.Path,
			Operation: name,
			Status:    "success",
			RowCount:  len(rows),
			Rows:      rows,
		})
	}
}

// problemFor classifies an Invoke failure. Database and mapping failures
// are the server's; only an unknown operation is the caller's.
func problemFor(op string, err error) utils.Problem {
	p := utils.Problem{Status: http.StatusInternalServerError, Operation: op}
	switch {
	case errors.Is(err, intercept.ErrDescriptorMissing):
		p.Status, p.Message, p.Code = http.StatusNotFound, "Operation not found", "OPERATION_NOT_FOUND"
	case errors.Is(err, db.ErrRowLimit):
		p.Status, p.Message, p.Code = http.StatusRequestEntityTooLarge, "Row limit exceeded", "SQL_ROW_LIMIT"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		p.Status, p.Message, p.Code = http.StatusGatewayTimeout, "Query timeout", "SQL_TIMEOUT"
	case errors.Is(err, intercept.ErrQueryExecution):
		p.Message, p.Code = "Query execution failed", "DB_ERROR"
	case errors.Is(err, mapping.ErrTypeMismatch):
		p.Message, p.Code, p.Details = "Result mapping failed", "MAPPING_TYPE_MISMATCH", mappingDetails(err)
	case errors.Is(err, mapping.ErrConstruction):
		p.Message, p.Code, p.Details = "Result mapping failed", "MAPPING_CONSTRUCTION_FAILED", mappingDetails(err)
	default:
		p.Message, p.Code = "Internal error", "INTERNAL"
	}
	return p
}

func mappingDetails(err error) map[string]any {
	var mErr *mapping.MappingError
	if !errors.As(err, &mErr) {
		return nil
	}
	details := map[string]any{"row": mErr.Row}
	if mErr.Field != "" {
		details["field"] = mErr.Field
	}
	if mErr.Key != "" {
		details["key"] = mErr.Key
	}
	return details
}

func ensureEOF(dec *json.Decoder) error {
	var extra any
	if err := dec.Decode(&extra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return errors.New("extra data")
}
