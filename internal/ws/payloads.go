package ws

// client → server
type ListPayload struct {
	Filter string `json:"filter"`
}

// server → client
type SuccessPayload struct {
	Success bool `json:"success"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
