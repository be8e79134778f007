package dto

type FieldCheckRequest struct {
	Value interface{} `json:"value"`
}

type FieldCheckResponse struct {
	Field string `json:"field"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
