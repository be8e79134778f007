package handler

import (
	"encoding/json"
	"net/http"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/pkg/response"
	"pubudu-echanneling/pkg/validator"

	"github.com/gorilla/mux"
)

// ValidationHandler publishes the registration rule profiles so browser
// forms and the server check input against the same rules.
type ValidationHandler struct{}

func NewValidationHandler() *ValidationHandler {
	return &ValidationHandler{}
}

func (h *ValidationHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Validation profiles retrieved successfully", validator.Profiles())
}

// ValidateForm runs the whole-form check of a profile. An invalid form is
// still a successful call; the verdict is in the result.
func (h *ValidationHandler) ValidateForm(w http.ResponseWriter, r *http.Request) {
	profile, ok := validator.LookupProfile(mux.Vars(r)["name"])
	if !ok {
		response.NotFound(w, "Validation profile not found")
		return
	}

	form, err := decodeForm(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	var result validator.Result
	switch profile.Name {
	case validator.AdminDoctor.Name:
		result = profile.ValidateDoctorAccount(form)
	case validator.AdminReceptionist.Name:
		result = profile.ValidateReceptionistAccount(form)
	default:
		result = profile.ValidatePatientRegistration(form)
	}

	response.Success(w, http.StatusOK, "Form validated", result)
}

func (h *ValidationHandler) ValidateField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	profile, ok := validator.LookupProfile(vars["name"])
	if !ok {
		response.NotFound(w, "Validation profile not found")
		return
	}

	var req dto.FieldCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	msg := profile.ValidateField(vars["field"], req.Value)
	response.Success(w, http.StatusOK, "Field validated", dto.FieldCheckResponse{
		Field: vars["field"],
		Valid: msg == "",
		Error: msg,
	})
}
