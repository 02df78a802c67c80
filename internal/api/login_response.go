package api

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Role    string `json:"role,omitempty"`
}
