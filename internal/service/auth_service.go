package service

import (
	"aspireedge/internal/model"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles administrator authentication for the question bank
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
}

// NewAuthService creates a new auth service. passwordHash is a bcrypt hash,
// see HashPassword.
func NewAuthService(username, passwordHash, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(secret),
		tokenTTL:     tokenTTL,
	}
}

// HashPassword hashes a plain admin password for NewAuthService
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login validates credentials and returns a signed admin token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	adminID := "admin_" + uuid.New().String()[:8]
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &model.AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     tokenString,
		AdminID:   adminID,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// ValidateAdminToken validates an admin JWT and returns claims
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
