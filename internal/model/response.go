package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// View describes which screen the shell should render.
type View struct {
	Name     string `json:"view"`
	Page     string `json:"page,omitempty"`
	Action   string `json:"action,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Data     any    `json:"data,omitempty"`
}
