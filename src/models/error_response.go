package models

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"` // typed failure kind, e.g. "ExpiredInvitation"
}

// SuccessResponse is the standard success payload used by swagger docs.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}
