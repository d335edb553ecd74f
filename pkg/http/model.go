package http

// ErrorBody is the envelope for requests rejected before the pipeline runs.
type ErrorBody struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"range"`
	Message string                 `json:"message,omitempty" example:"Range is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
