package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_LTE"`
	Field   string                 `json:"field,omitempty" example:"ai_analysis.confidence_score"`
	Message string                 `json:"message,omitempty" example:"ai_analysis.confidence_score must be less than or equal to 100"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
