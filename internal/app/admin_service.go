package app

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

const (
	AdminTokenIssuer = "minus-auction"
	AdminRole        = "admin"
)

var (
	ErrAdminDisabled = errors.New("admin login is not configured")
	ErrBadPassword   = errors.New("invalid admin password")
	ErrInvalidToken  = errors.New("invalid admin token")
)

// AdminService issues and verifies the signed session tokens that grant room
// administration (create rooms, start, reset, add bots, act for any team).
type AdminService struct {
	password string
	secret   string
	ttl      time.Duration
}

func NewAdminService(password, secret string, ttl time.Duration) *AdminService {
	return &AdminService{
		password: password,
		secret:   secret,
		ttl:      ttl,
	}
}

// Login checks the admin password and returns a token bound to userID.
func (s *AdminService) Login(userID, password string) (string, error) {
	if s == nil || s.password == "" || s.secret == "" {
		return "", ErrAdminDisabled
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", ErrBadPassword
	}

	claims := jwt.MapClaims{
		"iss":  AdminTokenIssuer,
		"sub":  userID,
		"role": AdminRole,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify validates a token and returns the user it was issued to.
func (s *AdminService) Verify(tokenString string) (string, error) {
	if s == nil || s.secret == "" {
		return "", ErrAdminDisabled
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if iss, _ := claims["iss"].(string); iss != AdminTokenIssuer {
		return "", fmt.Errorf("%w: issuer %q", ErrInvalidToken, iss)
	}
	if role, _ := claims["role"].(string); role != AdminRole {
		return "", fmt.Errorf("%w: role %q", ErrInvalidToken, role)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}
