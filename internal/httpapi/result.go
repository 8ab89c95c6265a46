package httpapi

import "net/http"

// Response is the envelope every API endpoint returns.
// - status: "success" | "error"
// - message: human-readable summary
// - data: payload, omitted on errors
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(w http.ResponseWriter, data interface{}, message string) {
	if message == "" {
		message = "Success"
	}
	writeJSON(w, http.StatusOK, Response{Status: "success", Message: message, Data: data})
}

func failure(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Response{Status: "error", Message: message})
}
