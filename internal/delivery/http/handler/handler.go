package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pubudu-echanneling/internal/usecase"
	"pubudu-echanneling/pkg/response"
	"pubudu-echanneling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// decodeForm reads a JSON object as a loosely typed form for the rule engine.
func decodeForm(r *http.Request) (validator.Form, error) {
	var form validator.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		return nil, err
	}
	if form == nil {
		form = validator.Form{}
	}
	return form, nil
}

// writeValidationError answers 400 with the field map when err carries one.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var vErr *usecase.ValidationError
	if !errors.As(err, &vErr) {
		return false
	}
	response.ValidationError(w, vErr.Errors)
	return true
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}
