package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/shopease/config"
)

// Token types carried in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrWrongTokenType is returned when a refresh token is presented where an
// access token is expected, or the other way round.
var ErrWrongTokenType = errors.New("auth: wrong token type")

// Claims holds the typed JWT payload. The user id travels as the standard
// "sub" claim.
type Claims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// IsAdmin reports whether the token was issued to an administrator.
func (c *Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// Roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

func secret() []byte {
	return []byte(config.JWTSecret())
}

func sign(userID, role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    config.AppName(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// GenerateToken creates a signed access token for the given user.
func GenerateToken(userID, role string) (string, error) {
	return sign(userID, role, TypeAccess, config.JWTTTL())
}

// GenerateRefreshToken creates a longer-lived token used only to obtain new
// access tokens.
func GenerateRefreshToken(userID, role string) (string, error) {
	return sign(userID, role, TypeRefresh, config.JWTRefreshTTL())
}

// ValidateToken parses and validates an access token.
func ValidateToken(t string) (*Claims, error) {
	return validate(t, TypeAccess)
}

// ValidateRefreshToken parses and validates a refresh token.
func ValidateRefreshToken(t string) (*Claims, error) {
	return validate(t, TypeRefresh)
}

func validate(t, typ string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
