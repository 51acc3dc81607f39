package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims that identify an authenticated user.
// A token is the only session state the server keeps; everything a handler
// needs about the caller rides in these claims.
type Payload struct {
	// StandardClaims embeds the JWT standard fields (Exp, Iat, Iss) used for
	// validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user's identifier (the users table UUID, as a string).
	ID string `json:"id"`

	// Username is the display name shown in rooms and typing indicators.
	Username string `json:"username"`

	// Email is the login email associated with the account.
	Email string `json:"email"`
}
