package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/room-reservation/internal/model"
)

// AccessToken is a signed HS256 JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims are the access token claims: the user id as subject plus the
// user's role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts the claims to the caller identity passed to the
// reservation core.
func (c *Claims) Identity() (model.Identity, error) {
	uid, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || uid == 0 {
		return model.Identity{}, errors.New("token subject is not a user id")
	}
	role, ok := model.ParseRole(c.Role)
	if !ok {
		return model.Identity{}, errors.New("token carries an unknown role")
	}
	return model.Identity{UserID: uid, Role: role}, nil
}

// NewAccessToken signs a token for the user that expires after ttlMin
// minutes.
func NewAccessToken(secret string, userID uint64, role model.Role, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
