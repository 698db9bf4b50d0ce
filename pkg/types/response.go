package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StatusResponse acknowledges mutations that return no resource body.
type StatusResponse struct {
	Status string `json:"status"`
}

var StatusOK = StatusResponse{Status: "ok"}

