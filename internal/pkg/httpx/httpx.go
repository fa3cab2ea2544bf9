package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shoplite/pricing-service/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Error maps the workflow taxonomy onto HTTP status codes. Anything outside
// the taxonomy is an infrastructure failure and surfaces as a 500.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrProductNotFound),
		errors.Is(err, model.ErrCartNotFound),
		errors.Is(err, model.ErrCartItemNotFound),
		errors.Is(err, model.ErrOrderNotFound):
		status = http.StatusNotFound
	case model.IsInsufficientInventory(err):
		status = http.StatusConflict
	case errors.Is(err, model.ErrOrderAlreadyExists),
		errors.Is(err, model.ErrAlreadyCancelled):
		status = http.StatusConflict
	case errors.Is(err, model.ErrCartEmpty),
		errors.Is(err, model.ErrInvalidQuantity):
		status = http.StatusUnprocessableEntity
	}
	JSON(w, status, errorResponse{Error: err.Error()})
}
