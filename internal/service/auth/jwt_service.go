package auth

import (
	"context"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// JWTService issues and verifies the bearer tokens that identify a learner.
type JWTService interface {
	// GenerateToken creates a signed access token for the learner.
	GenerateToken(ctx context.Context, learnerID domain.LearnerID) (string, error)

	// ValidateToken verifies signature and lifetime and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of an access token.
type Claims struct {
	LearnerID domain.LearnerID `json:"lid,omitempty"`
	Subject   string           `json:"sub,omitempty"`
	IssuedAt  time.Time        `json:"iat,omitempty"`
	ExpiresAt time.Time        `json:"exp,omitempty"`
	ID        string           `json:"jti,omitempty"`
}
