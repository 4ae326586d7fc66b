package models

// TokenTypeBearer is the token_type value reported with every pair.
const TokenTypeBearer = "bearer"

// TokenPair bundles a short-lived access token and a long-lived refresh
// token as returned to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
