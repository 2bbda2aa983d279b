package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/typeid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidName  = errors.New("display name is required")
)

const defaultTTL = 24 * time.Hour

// Service issues and checks tokens granting access to one drawing.
type Service struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		ttl:       defaultTTL,
		now:       time.Now,
	}
}

// Claims are the token claims. Subject is the user id.
type Claims struct {
	DrawingID   string `json:"drw"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

type Grant struct {
	Token     string    `json:"token"`
	DrawingID string    `json:"drawingId"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueToken grants a new anonymous user access to drawingID.
func (s *Service) IssueToken(drawingID, displayName string) (*Grant, error) {
	if displayName == "" {
		return nil, ErrInvalidName
	}
	if err := typeid.Validate(drawingID, typeid.PrefixDrawing); err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.now()
	userID := "user-" + uuid.New().String()[:8]
	claims := Claims{
		DrawingID:   drawingID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        typeid.NewTokenID(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Grant{
		Token:     signed,
		DrawingID: drawingID,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.DrawingID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
