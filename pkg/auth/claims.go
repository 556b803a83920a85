package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	ArtisanID *uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. ArtisanID
// is present only for users who own a shop.
type AccessTokenClaims struct {
	UserID    uuid.UUID  `json:"user_id"`
	ArtisanID *uuid.UUID `json:"artisan_id,omitempty"`
	jwt.RegisteredClaims
}
