package model

// ErrorResponse is the uniform error body returned for every failure,
// regardless of status code. Description never carries internal detail.
type ErrorResponse struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TokenResponse is the body of a successful token issue.
type TokenResponse struct {
	Token string `json:"token"`
}
