package auth

import (
	"strconv"

	"mayday/coordinator/internal/constants"
)

// UserClaims is what handlers and middleware know about the caller.
type UserClaims interface {
	UserID() uint
	Role() constants.UserRole
	Source() string
	HasRole(roles ...constants.UserRole) bool
	Subject() string
}

type JWTClaims struct {
	UserIDValue uint
	RoleValue   constants.UserRole
	TokenID     string
}

func (c *JWTClaims) UserID() uint             { return c.UserIDValue }
func (c *JWTClaims) Role() constants.UserRole { return c.RoleValue }
func (c *JWTClaims) Source() string           { return "JWT" }
func (c *JWTClaims) Subject() string          { return strconv.FormatUint(uint64(c.UserIDValue), 10) }

func (c *JWTClaims) HasRole(roles ...constants.UserRole) bool {
	for _, r := range roles {
		if c.RoleValue == r {
			return true
		}
	}
	return false
}
