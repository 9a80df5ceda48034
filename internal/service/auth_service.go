package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storyhouse/internal/models"
	"storyhouse/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// apiTokenTTL bounds tokens handed out by GenerateToken to API clients.
const apiTokenTTL = time.Hour

// Token audiences. A token only parses for the audience it was issued to,
// so a session cookie is not a bearer token and vice versa.
const (
	AudienceSession = "storyhouse-session"
	AudienceAPI     = "storyhouse-api"
)

// AuthService handles registration, credential checks and signed tokens.
type AuthService struct {
	users      repository.UserRepo
	signingKey []byte
}

func NewAuthService(users repository.UserRepo, signingKey string) *AuthService {
	return &AuthService{users: users, signingKey: []byte(signingKey)}
}

// Register hashes the password and creates a new user. Username and e-mail
// collisions come back as ErrUsernameTaken / ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	p = p.normalized()
	u := &models.User{Username: p.Username, Email: p.Email}
	if err := u.SetPassword(p.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user when username and password match.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// GenerateToken validates credentials and returns a short-lived API token.
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(u.ID, AudienceAPI, apiTokenTTL)
}

// IssueToken signs a token identifying userID to audience for ttl.
func (s *AuthService) IssueToken(userID int, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature, expiry and audience and returns the
// user ID.
func (s *AuthService) ParseToken(accessToken, audience string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithAudience(audience))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
