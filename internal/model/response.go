package model

type APIResponse struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode,omitempty"`
	Data       any       `json:"data,omitempty"`
	Error      *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
