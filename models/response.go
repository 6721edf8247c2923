package models

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// The auth routes answer with {ok} on success and {error} otherwise.
type AuthOKResponse struct {
	OK      bool     `json:"ok"`
	Session *Session `json:"session,omitempty"`
}

type AuthErrorResponse struct {
	Error string `json:"error"`
}
