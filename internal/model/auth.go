package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
)

// Principal is the authenticated staff member attached to a request
type Principal struct {
	StaffID uuid.UUID `json:"staff_id"`
	Email   string    `json:"email"`
	Role    StaffRole `json:"role"`
}

func (p Principal) HasRole(roles ...StaffRole) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Staff       Principal `json:"staff"`
}
