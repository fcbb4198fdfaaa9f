package dto

// CredentialsRequest is the JSON body for POST /register and POST /token.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required,max=120"`
	Password string `json:"password" binding:"required,max=72"`
}

// UserResponse is returned after registration.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
