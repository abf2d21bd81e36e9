package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/Haarush2006/OpsBoard-BE/pkg/errors"
	"github.com/Haarush2006/OpsBoard-BE/pkg/validator"
)

type response struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	writeJSON(w, appErr.Status, response{Error: &errorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
	}})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, response{Error: &errorBody{
			Code:    "INVALID_INPUT",
			Message: "validation failed",
			Fields:  vErr.Fields(),
		}})
		return
	}
	writeAppError(w, apperrors.InvalidInput(err.Error()))
}
